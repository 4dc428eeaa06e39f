package lich

import (
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/go-lich/internal/config"
)

// ErrInvalidDate reports a day or month outside the Gregorian calendar.
var ErrInvalidDate = errors.New(config.ErrInvalidDate)

// Zone is the fixed UTC+7 zone in which "today" is decided.
var Zone = time.FixedZone(config.TimezoneName, config.TimezoneOffsetSeconds)

// Date is a Gregorian calendar date.
type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// FromTime returns the calendar date of t as observed in UTC+7.
func FromTime(t time.Time) Date {
	y, m, d := t.In(Zone).Date()
	return Date{Day: d, Month: int(m), Year: y}
}

// ParseDate parses a YYYY-MM-DD string and validates it.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(config.DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Day: t.Day(), Month: int(t.Month()), Year: t.Year()}, nil
}

// JulianDay returns the Julian Day Number of d.
func (d Date) JulianDay() int { return JulianDay(d.Day, d.Month, d.Year) }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date { return FromJulianDay(d.JulianDay() + n) }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.JulianDay() < o.JulianDay() }

// Weekday returns the day of the week.
func (d Date) Weekday() Weekday { return Weekday(floorMod(d.JulianDay(), 7)) }

// Time returns midnight of d in UTC+7.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, Zone)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Validate rejects months outside 1..12 and days outside the month length.
func (d Date) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidDate, d.Month)
	}
	if d.Day < 1 || d.Day > DaysIn(d.Month, d.Year) {
		return fmt.Errorf("%w: day %d of %04d-%02d", ErrInvalidDate, d.Day, d.Year, d.Month)
	}
	return nil
}

// DaysIn returns the number of days in the given month, honoring the
// Gregorian leap-year rule.
func DaysIn(month, year int) int {
	switch month {
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// IsLeapYear applies the proleptic Gregorian rule.
func IsLeapYear(year int) bool {
	return floorMod(year, 4) == 0 && (floorMod(year, 100) != 0 || floorMod(year, 400) == 0)
}

// Weekday counts from Monday (0) to Sunday (6), matching the
// Monday-first week used by Vietnamese calendars.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{"Thứ Hai", "Thứ Ba", "Thứ Tư", "Thứ Năm", "Thứ Sáu", "Thứ Bảy", "Chủ Nhật"}

var weekdayShort = [7]string{"Hai", "Ba", "Tư", "Năm", "Sáu", "Bảy", "CN"}

func (w Weekday) String() string { return weekdayNames[floorMod(int(w), 7)] }

// Short returns the column header used in month grids.
func (w Weekday) Short() string { return weekdayShort[floorMod(int(w), 7)] }

// MarshalText encodes the weekday as its Vietnamese name.
func (w Weekday) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// WeekdayHeaders returns the short names Monday through Sunday.
func WeekdayHeaders() [7]string { return weekdayShort }
