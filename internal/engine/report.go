package engine

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/lich"
	"github.com/tartampluch/go-lich/internal/messages"
)

// DayReport aggregates everything known about one day for one querent.
type DayReport struct {
	Date      lich.Date         `json:"date"`
	Weekday   lich.Weekday      `json:"weekday"`
	CanChi    lich.CanChiResult `json:"canChi"`
	Lunar     lich.Lunar        `json:"lunar"`
	LunarYear lich.Pair         `json:"lunarYear"`
	HoangDao  bool              `json:"hoangDao"`
	DayKind   string            `json:"dayKind"`
	Hours     []lich.Hour       `json:"hours"`

	BirthYear     int                `json:"birthYear"`
	Age           int                `json:"age"`
	Compatibility lich.Compatibility `json:"compatibility"`
	Band          lich.Band          `json:"band"`
	Explanation   string             `json:"explanation,omitempty"`

	Purpose string `json:"purpose"`
	Advice  string `json:"advice"`
}

// BuildDay computes the report of target for a querent born in birthYear.
// An empty purpose falls back to the default one. msgs may be nil.
func BuildDay(target lich.Date, birthYear int, purpose string, msgs *messages.Catalog) DayReport {
	if purpose == "" {
		purpose = config.DefaultPurpose
	}

	cc := lich.CanChi(target.Day, target.Month, target.Year)
	lunar := lich.LunarDate(target.Day, target.Month, target.Year)
	compat := lich.CompareBranches(lich.BirthChi(birthYear), cc.DayChiOnly)
	band := lich.BandOf(compat.Score)
	hoangDao := lich.IsHoangDaoDay(cc.DayChiOnly)

	return DayReport{
		Date:          target,
		Weekday:       target.Weekday(),
		CanChi:        cc,
		Lunar:         lunar,
		LunarYear:     lich.YearPair(lunar.Year),
		HoangDao:      hoangDao,
		DayKind:       msgs.DayKind(hoangDao),
		Hours:         lich.AuspiciousHours(cc.DayChiOnly),
		BirthYear:     birthYear,
		Age:           target.Year - birthYear,
		Compatibility: compat,
		Band:          band,
		Explanation:   msgs.Explain(compat.Category.Key()),
		Purpose:       purpose,
		Advice:        msgs.Advice(purpose, compat.Text),
	}
}

// Summary is the one-line title of the report.
func (r DayReport) Summary(msgs *messages.Catalog) string {
	return msgs.Summary(r.CanChi.Day.String(), r.Compatibility.Text, r.Compatibility.Score)
}

// Description is the multi-line body used in calendar events.
func (r DayReport) Description(msgs *messages.Catalog) string {
	hours := HourList(r.Hours)
	msg := msgs.Format(config.TKeyEvtDescription, map[string]any{
		"LunarDay":   r.Lunar.Day,
		"LunarMonth": r.Lunar.Month,
		"LunarYear":  r.Lunar.Year,
		"YearLabel":  r.LunarYear.String(),
		"Hours":      hours,
		"Advice":     r.Advice,
	})
	if msg == "" {
		return fmt.Sprintf("%d/%d/%d\n%s\n%s", r.Lunar.Day, r.Lunar.Month, r.Lunar.Year, hours, r.Advice)
	}
	return msg
}

// HourList renders hours as "Tý (23h-01h), Sửu (01h-03h)".
func HourList(hours []lich.Hour) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%s (%s)", h.Name, h.Window)
	}
	return strings.Join(parts, ", ")
}

// MonthCell is one square of the month grid. Blank padding cells have
// InMonth false and zero values elsewhere.
type MonthCell struct {
	InMonth    bool `json:"inMonth"`
	Day        int  `json:"day,omitempty"`
	LunarDay   int  `json:"lunarDay,omitempty"`
	LunarMonth int  `json:"lunarMonth,omitempty"`
	HoangDao   bool `json:"hoangDao"`
	Today      bool `json:"today"`
}

// MonthGrid is a Monday-first calendar page.
type MonthGrid struct {
	Year    int         `json:"year"`
	Month   int         `json:"month"`
	Headers [7]string   `json:"headers"`
	Cells   []MonthCell `json:"cells"`
}

// Weeks returns the number of grid rows.
func (g MonthGrid) Weeks() int { return len(g.Cells) / config.DaysPerWeek }

// BuildMonth lays out month/year on 35 or 42 cells, Monday first, and
// marks today when it falls inside the month.
func BuildMonth(year, month int, today lich.Date) (MonthGrid, error) {
	first := lich.Date{Day: 1, Month: month, Year: year}
	if err := first.Validate(); err != nil {
		return MonthGrid{}, err
	}

	lead := int(first.Weekday())
	days := lich.DaysIn(month, year)

	size := 5 * config.DaysPerWeek
	if lead+days > size {
		size = 6 * config.DaysPerWeek
	}

	cells := make([]MonthCell, size)
	for i := range days {
		d := lich.Date{Day: i + 1, Month: month, Year: year}
		lunar := lich.LunarDate(d.Day, d.Month, d.Year)
		cells[lead+i] = MonthCell{
			InMonth:    true,
			Day:        d.Day,
			LunarDay:   lunar.Day,
			LunarMonth: lunar.Month,
			HoangDao:   lich.IsHoangDaoDay(lich.CanChi(d.Day, d.Month, d.Year).DayChiOnly),
			Today:      d == today,
		}
	}

	return MonthGrid{
		Year:    year,
		Month:   month,
		Headers: lich.WeekdayHeaders(),
		Cells:   cells,
	}, nil
}
