package lich

// CanChiResult holds the sexagenary labels of a Gregorian date.
// DayChiOnly repeats the day branch for auspicious-hour lookups.
type CanChiResult struct {
	Day        Pair `json:"day"`
	Month      Pair `json:"month"`
	Year       Pair `json:"year"`
	DayChiOnly Chi  `json:"dayChiOnly"`
}

// CanChi computes the day, month and year labels of a date.
//
// The day pair cycles with period 60 as the Julian day advances. The month
// stem starts from ((year mod 5)*2 + 2) for month 1 (branch Dần) and the
// year pair is taken from the Gregorian year number as given.
func CanChi(day, month, year int) CanChiResult {
	jd := JulianDay(day, month, year)

	dayPair := Pair{Can: CanOf(jd + 9), Chi: ChiOf(jd + 1)}

	startMonthCan := floorMod(floorMod(year, 5)*2+2, canCount)
	monthPair := Pair{Can: CanOf(startMonthCan + month - 1), Chi: ChiOf(month + 1)}

	return CanChiResult{
		Day:        dayPair,
		Month:      monthPair,
		Year:       YearPair(year),
		DayChiOnly: dayPair.Chi,
	}
}

// YearPair returns the stem/branch label of a year number.
func YearPair(year int) Pair {
	return Pair{Can: CanOf(year + 6), Chi: ChiOf(year + 8)}
}

// BirthChi returns the zodiac branch of a birth year.
func BirthChi(year int) Chi { return ChiOf(year + 8) }
