package engine_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/engine"
	"github.com/tartampluch/go-lich/internal/lich"
	"github.com/tartampluch/go-lich/internal/messages"
)

func TestBuildDay(t *testing.T) {
	day := lich.Date{Day: 1, Month: 1, Year: 2000}
	got := engine.BuildDay(day, 1996, "", nil)

	want := engine.DayReport{
		Date:    day,
		Weekday: lich.Saturday,
		CanChi: lich.CanChiResult{
			Day:        lich.Pair{Can: lich.Mau, Chi: lich.Horse},
			Month:      lich.Pair{Can: lich.Binh, Chi: lich.Tiger},
			Year:       lich.Pair{Can: lich.Canh, Chi: lich.Dragon},
			DayChiOnly: lich.Horse,
		},
		Lunar:     lich.Lunar{Day: 25, Month: 12, Year: 1999},
		LunarYear: lich.Pair{Can: lich.Ky, Chi: lich.Cat},
		HoangDao:  true,
		DayKind:   config.FallbackHoangDao,
		Hours: []lich.Hour{
			lich.HourOf(lich.Tiger),
			lich.HourOf(lich.Dragon),
			lich.HourOf(lich.Snake),
			lich.HourOf(lich.Monkey),
			lich.HourOf(lich.Rooster),
			lich.HourOf(lich.Pig),
		},
		BirthYear:     1996,
		Age:           4,
		Compatibility: lich.CompareBranches(lich.Rat, lich.Horse),
		Band:          lich.BandPoor,
		Purpose:       config.DefaultPurpose,
		Advice:        "Đối với việc Khai trương, ngày này được xem là đại kỵ (lục xung).",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildDay mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDay_WithCatalog(t *testing.T) {
	msgs, err := messages.New()
	require.NoError(t, err)

	// 2000-01-03 is Canh Thân, in the triad of a 1996 (Rat) querent.
	r := engine.BuildDay(lich.Date{Day: 3, Month: 1, Year: 2000}, 1996, "Xuất hành", msgs)

	assert.Equal(t, 95, r.Compatibility.Score)
	assert.Equal(t, lich.BandGood, r.Band)
	assert.False(t, r.HoangDao, "Thân is not a Hoàng Đạo day")
	assert.Equal(t, "Ngày Hắc Đạo", r.DayKind)
	assert.Contains(t, r.Explanation, "Tam Hợp")
	assert.Equal(t, "Đối với việc Xuất hành, ngày này được xem là tuyệt vời (tam hợp).", r.Advice)
	assert.Equal(t, "Canh Thân · Tuyệt vời (Tam Hợp) (95%)", r.Summary(msgs))
}

func TestBuildDay_PurposeDoesNotChangeScore(t *testing.T) {
	day := lich.Date{Day: 15, Month: 6, Year: 2024}
	base := engine.BuildDay(day, 1988, config.Purposes[0], nil)

	for _, p := range config.Purposes[1:] {
		r := engine.BuildDay(day, 1988, p, nil)
		assert.Equal(t, base.Compatibility, r.Compatibility, p)
		assert.Equal(t, p, r.Purpose)
	}
}

func TestDayReport_JSON(t *testing.T) {
	r := engine.BuildDay(lich.Date{Day: 15, Month: 6, Year: 2024}, 1995, "", nil)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	canChi := decoded["canChi"].(map[string]any)
	assert.Equal(t, "Canh Tuất", canChi["day"])
	assert.Equal(t, "Kỷ Mùi", canChi["month"])
	assert.Equal(t, "Giáp Thìn", canChi["year"])
	assert.Equal(t, "Thứ Bảy", decoded["weekday"])
	assert.Len(t, decoded["hours"], 6)
	assert.NotContains(t, decoded, "explanation", "empty explanation is omitted")
}

func TestHourList(t *testing.T) {
	assert.Empty(t, engine.HourList(nil))
	assert.Equal(t, "Tý (23h-01h), Sửu (01h-03h)",
		engine.HourList([]lich.Hour{lich.HourOf(lich.Rat), lich.HourOf(lich.Ox)}))
}

func TestBuildMonth(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantCells int
		wantLead  int
	}{
		{"January 2000 starts Saturday", 2000, 1, 42, 5},
		{"June 2024 fits five weeks", 2024, 6, 35, 5},
		{"February 2021 starts Monday", 2021, 2, 35, 0},
		{"December 2024 starts Sunday", 2024, 12, 42, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := engine.BuildMonth(tt.year, tt.month, lich.Date{})
			require.NoError(t, err)

			assert.Len(t, g.Cells, tt.wantCells)
			assert.Equal(t, tt.wantCells/7, g.Weeks())
			assert.Equal(t, lich.WeekdayHeaders(), g.Headers)

			for i := 0; i < tt.wantLead; i++ {
				assert.Equal(t, engine.MonthCell{}, g.Cells[i], "leading cell %d is blank", i)
			}
			assert.Equal(t, 1, g.Cells[tt.wantLead].Day)

			days := lich.DaysIn(tt.month, tt.year)
			last := tt.wantLead + days - 1
			assert.Equal(t, days, g.Cells[last].Day)
			for i := last + 1; i < len(g.Cells); i++ {
				assert.False(t, g.Cells[i].InMonth, "trailing cell %d is blank", i)
			}
		})
	}
}

func TestBuildMonth_Cells(t *testing.T) {
	today := lich.Date{Day: 1, Month: 1, Year: 2000}
	g, err := engine.BuildMonth(2000, 1, today)
	require.NoError(t, err)

	first := g.Cells[5]
	assert.Equal(t, engine.MonthCell{
		InMonth:    true,
		Day:        1,
		LunarDay:   25,
		LunarMonth: 12,
		HoangDao:   true,
		Today:      true,
	}, first)

	// 2000-01-03 is Canh Thân, a Hắc Đạo day.
	assert.False(t, g.Cells[7].HoangDao)
	assert.False(t, g.Cells[7].Today)

	todays := 0
	for _, c := range g.Cells {
		if c.Today {
			todays++
		}
	}
	assert.Equal(t, 1, todays)
}

func TestBuildMonth_Invalid(t *testing.T) {
	for _, m := range []int{0, 13, -1} {
		_, err := engine.BuildMonth(2024, m, lich.Date{})
		assert.ErrorIs(t, err, lich.ErrInvalidDate)
	}
}
