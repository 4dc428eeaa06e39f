package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/engine"
	"github.com/tartampluch/go-lich/internal/messages"
	"github.com/tartampluch/go-lich/internal/server"
)

const cellWidth = 10

// renderDay prints a day report as plain text.
func renderDay(w io.Writer, r engine.DayReport, msgs *messages.Catalog) error {
	lines := []string{
		fmt.Sprintf("%s, %s · %s", r.Weekday, r.Date, r.DayKind),
		r.Summary(msgs),
		fmt.Sprintf("%s / %s / %s", r.CanChi.Day, r.CanChi.Month, r.CanChi.Year),
		msgs.Format(config.TKeyLunarLabel, map[string]any{
			"Day":       r.Lunar.Day,
			"Month":     r.Lunar.Month,
			"YearLabel": r.LunarYear.String(),
		}),
		fmt.Sprintf("%s: %s", msgs.Get(config.TKeyHoursLabel), engine.HourList(r.Hours)),
		msgs.Format(config.TKeyAge, map[string]any{"Age": r.Age}),
	}
	if r.Explanation != "" {
		lines = append(lines, r.Explanation)
	}
	lines = append(lines, r.Advice, "", msgs.Get(config.TKeyBasis))
	return writeLines(w, lines)
}

// renderCompat prints the compatibility line of a birth year for a day.
func renderCompat(w io.Writer, c server.CompatResponse, msgs *messages.Catalog) error {
	line := msgs.Format(config.TKeyContactLine, map[string]any{
		"Name":     strconv.Itoa(c.BirthYear),
		"Chi":      c.Compatibility.UserChi.String(),
		"Category": c.Compatibility.Text,
		"Score":    c.Compatibility.Score,
	})
	lines := []string{fmt.Sprintf("%s · %s", c.Date, c.Compatibility.DayChi), line}
	if exp := msgs.Explain(c.Compatibility.Category.Key()); exp != "" {
		lines = append(lines, exp)
	}
	return writeLines(w, lines)
}

// renderHours prints one auspicious hour per line.
func renderHours(w io.Writer, h server.HoursResponse, msgs *messages.Catalog) error {
	lines := []string{fmt.Sprintf("%s · %s", h.Branch, msgs.DayKind(h.HoangDaoDay))}
	for _, hour := range h.Hours {
		lines = append(lines, fmt.Sprintf("  %-4s %s", hour.Name, hour.Window))
	}
	return writeLines(w, lines)
}

// renderMonth prints the grid one week per line. Each cell shows the
// Gregorian day and the lunar day/month; "*" marks a Hoàng Đạo day and
// ">" marks today.
func renderMonth(w io.Writer, g engine.MonthGrid) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d/%04d\n", g.Month, g.Year)

	for _, h := range g.Headers {
		fmt.Fprintf(&b, "%-*s", cellWidth, h)
	}
	b.WriteString("\n")

	for week := range g.Weeks() {
		row := g.Cells[week*config.DaysPerWeek : (week+1)*config.DaysPerWeek]
		for _, c := range row {
			b.WriteString(formatCell(c))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatCell(c engine.MonthCell) string {
	if !c.InMonth {
		return strings.Repeat(" ", cellWidth)
	}
	mark, star := " ", " "
	if c.Today {
		mark = ">"
	}
	if c.HoangDao {
		star = "*"
	}
	return fmt.Sprintf("%s%2d%s%2d/%-2d ", mark, c.Day, star, c.LunarDay, c.LunarMonth)
}

func writeLines(w io.Writer, lines []string) error {
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
