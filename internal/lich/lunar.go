package lich

import (
	"math"

	"github.com/tartampluch/go-lich/internal/config"
)

// Lunar is an approximate lunar calendar date.
type Lunar struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

var epochJD = JulianDay(config.EpochDay, config.EpochMonth, config.EpochYear)

// LunarDate estimates the lunar date from the mean synodic month counted
// from 2000-01-01 (the 25th day of a lunar month). It does not consult
// solar terms and drifts from published almanacs around new moons.
//
// The month heuristic assumes the lunar month trails the Gregorian month by
// one once the lunar day has passed the Gregorian day; the year steps back
// only for January dates that land in lunar months 11 or 12.
func LunarDate(day, month, year int) Lunar {
	diff := float64(JulianDay(day, month, year) - epochJD)

	totalMonths := diff / config.SynodicMonthDays
	progress := totalMonths - math.Floor(totalMonths)

	lunarDay := int(math.Floor(progress*config.SynodicMonthDays)) + config.EpochLunarDay
	if lunarDay > config.MaxLunarDay {
		lunarDay -= config.MaxLunarDay
	}
	if lunarDay == 0 {
		lunarDay = config.MaxLunarDay
	}

	shift := 0
	if lunarDay > day {
		shift = -1
	}
	lunarMonth := floorMod(month+shift+11, 12) + 1

	lunarYear := year
	if month < 2 && lunarMonth > 10 {
		lunarYear--
	}

	return Lunar{Day: lunarDay, Month: lunarMonth, Year: lunarYear}
}
