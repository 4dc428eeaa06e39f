package lich

// JulianDay returns the Julian Day Number of a proleptic Gregorian date.
// January and February count as months 13 and 14 of the preceding year.
// Out-of-range fields are not rejected; they roll over arithmetically
// (see Date.Validate for callers that need strict input).
func JulianDay(day, month, year int) int {
	a := floorDiv(14-month, 12)
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + floorDiv(153*m+2, 5) + 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045
}

// FromJulianDay converts a Julian Day Number back to a Gregorian date
// (Fliegel-Van Flandern). Valid for non-negative day numbers.
func FromJulianDay(jdn int) Date {
	l := jdn + 68569
	n := 4 * l / 146097
	l -= (146097*n + 3) / 4
	i := 4000 * (l + 1) / 1461001
	l = l - 1461*i/4 + 31
	j := 80 * l / 2447
	k := l - 2447*j/80
	l = j / 11
	j = j + 2 - 12*l
	i = 100*(n-49) + i + l
	return Date{Day: k, Month: j, Year: i}
}
