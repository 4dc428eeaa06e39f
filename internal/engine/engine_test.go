package engine_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/engine"
	"github.com/tartampluch/go-lich/internal/lich"
	"github.com/tartampluch/go-lich/internal/messages"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.VCardFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// newYear2000 is 2000-01-01 10:00 in UTC+7, a Mậu Ngọ day.
var newYear2000 = time.Date(2000, 1, 1, 3, 0, 0, 0, time.UTC)

func decodeFeed(t *testing.T, data []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	return cal
}

func text(t *testing.T, c *ical.Component, name string) string {
	t.Helper()
	v, err := c.Props.Text(name)
	require.NoError(t, err)
	return v
}

// -----------------------------------------------------------------------------
// Feed
// -----------------------------------------------------------------------------

func TestRunSync_FeedOnly(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: newYear2000}}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		BirthYear:   1996,
		HorizonDays: 3,
		Mode:        config.SourceModeNone,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Events, "yesterday plus three days")
	assert.Nil(t, res.Contacts)

	cal := decodeFeed(t, res.ICS)
	assert.Equal(t, config.ICalCalName, text(t, cal.Component, config.PropXWRCalName))
	assert.NotNil(t, cal.Props.Get(config.PropRefresh))

	events := cal.Events()
	require.Len(t, events, 4)

	wantStarts := []string{"19991231", "20000101", "20000102", "20000103"}
	for i, ev := range events {
		assert.Equal(t, wantStarts[i], ev.Props.Get(config.PropDTStart).Value)
		assert.NotNil(t, ev.Props.Get(config.PropDTStamp))
	}

	// 2000-01-01 is Mậu Ngọ: Horse against a Rat querent is Lục Xung.
	today := events[1].Component
	assert.Equal(t, "Mậu Ngọ · Đại kỵ (Lục Xung) (15%)", text(t, today, config.PropSummary))
	assert.Equal(t, config.FallbackHoangDao, text(t, today, config.PropCategories))
	assert.Contains(t, text(t, today, config.PropDescription), "Dần (03h-05h)")

	// 2000-01-03 is Canh Thân: Monkey is in the Rat triad.
	assert.Equal(t, "Canh Thân · Tuyệt vời (Tam Hợp) (95%)", text(t, events[3].Component, config.PropSummary))
}

func TestRunSync_FeedWithCatalog(t *testing.T) {
	msgs, err := messages.New()
	require.NoError(t, err)

	gen := &engine.Generator{
		Clock:    MockClock{CurrentTime: newYear2000},
		Messages: msgs,
	}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		BirthYear:   1996,
		Purpose:     "Cưới hỏi",
		HorizonDays: 1,
	})
	require.NoError(t, err)

	events := decodeFeed(t, res.ICS).Events()
	require.Len(t, events, 2)

	desc := text(t, events[1].Component, config.PropDescription)
	assert.Contains(t, desc, "ngày 25 tháng 12 năm Kỷ Mão")
	assert.Contains(t, desc, "Giờ Hoàng Đạo: Dần (03h-05h), Thìn (07h-09h)")
	assert.Contains(t, desc, "Đối với việc Cưới hỏi, ngày này được xem là đại kỵ (lục xung).")
}

func TestRunSync_StableUIDs(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: newYear2000}}
	cfg := engine.SyncConfig{BirthYear: 1990, HorizonDays: 2}

	first, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)

	gen.Clock = MockClock{CurrentTime: newYear2000.Add(5 * time.Hour)}
	second, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)

	uids := func(data []byte) []string {
		var out []string
		for _, ev := range decodeFeed(t, data).Events() {
			out = append(out, text(t, ev.Component, config.PropUID))
		}
		return out
	}

	a, b := uids(first.ICS), uids(second.ICS)
	assert.Equal(t, a, b, "UIDs must survive regeneration")
	assert.Equal(t, engine.EventUID(lich.Date{Day: 1, Month: 1, Year: 2000}, 1990, config.DefaultPurpose), a[1])
	assert.NotEqual(t, a[0], a[1])
	assert.True(t, strings.HasSuffix(a[0], "@"+config.ICalDomain))

	other := engine.EventUID(lich.Date{Day: 1, Month: 1, Year: 2000}, 1991, config.DefaultPurpose)
	assert.NotEqual(t, a[1], other, "birth year is part of the identity")
}

func TestRunSync_SameDayFeedIsIdentical(t *testing.T) {
	cfg := engine.SyncConfig{BirthYear: 1996, HorizonDays: 2}

	morning, err := (&engine.Generator{Clock: MockClock{CurrentTime: newYear2000}}).RunSync(context.Background(), cfg)
	require.NoError(t, err)
	// 16:59 UTC is 23:59 local, still 2000-01-01.
	evening, err := (&engine.Generator{Clock: MockClock{CurrentTime: newYear2000.Add(13*time.Hour + 59*time.Minute)}}).RunSync(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, string(morning.ICS), string(evening.ICS))
	for _, ev := range decodeFeed(t, morning.ICS).Events() {
		assert.Equal(t, "19991231T170000Z", ev.Props.Get(config.PropDTStamp).Value, "local midnight in UTC")
	}

	nextDay, err := (&engine.Generator{Clock: MockClock{CurrentTime: newYear2000.Add(14 * time.Hour)}}).RunSync(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotEqual(t, string(morning.ICS), string(nextDay.ICS))
}

func TestRunSync_WithReminders(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: newYear2000}}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		BirthYear:       1996,
		HorizonDays:     1,
		ReminderTrigger: "-PT2H",
	})
	require.NoError(t, err)

	for _, ev := range decodeFeed(t, res.ICS).Events() {
		require.Len(t, ev.Children, 1)
		alarm := ev.Children[0]
		assert.Equal(t, config.ICalComponent, alarm.Name)
		assert.Equal(t, "-PT2H", alarm.Props.Get(config.PropTrigger).Value)
		assert.Equal(t, config.ICalAction, alarm.Props.Get(config.PropAction).Value)
	}
	assert.NotContains(t, string(res.ICS), "VALUE=TEXT")
}

func TestRunSync_HorizonBounds(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: newYear2000}}

	tests := []struct {
		name    string
		horizon int
		want    int
	}{
		{"Default", 0, config.DefaultHorizonDays + 1},
		{"Negative", -5, config.DefaultHorizonDays + 1},
		{"Capped", 10_000, config.MaxHorizonDays + 1},
		{"Single", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := gen.RunSync(context.Background(), engine.SyncConfig{BirthYear: 2000, HorizonDays: tt.horizon})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Events)
			assert.Equal(t, tt.want, strings.Count(string(res.ICS), "BEGIN:VEVENT"))
		})
	}
}

// -----------------------------------------------------------------------------
// Contact survey
// -----------------------------------------------------------------------------

const surveyCards = `BEGIN:VCARD
VERSION:4.0
FN:Anh Ba
BDAY:1996-05-10
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:Chị Tư
BDAY:1990-03-03
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:Em Năm
BDAY:19860704
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:No Year
BDAY:--0612
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:No Birthday
END:VCARD
`

func TestRunSync_Local_Survey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(surveyCards), config.FilePermUserRW))

	gen := &engine.Generator{Clock: MockClock{CurrentTime: newYear2000}}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		BirthYear: 1996,
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})
	require.NoError(t, err)
	require.Len(t, res.Contacts, 3, "contacts without a birth year are skipped")

	// Sorted by score: Tiger (Tam Hợp), Horse (Thái Tuế), Rat (Lục Xung).
	assert.Equal(t, "Em Năm", res.Contacts[0].Name)
	assert.Equal(t, lich.Tiger, res.Contacts[0].BirthChi)
	assert.Equal(t, 95, res.Contacts[0].Compatibility.Score)
	assert.Equal(t, 14, res.Contacts[0].Age)
	assert.Equal(t, lich.BandGood, res.Contacts[0].Band)

	assert.Equal(t, "Chị Tư", res.Contacts[1].Name)
	assert.Equal(t, lich.CategoryThaiTue, res.Contacts[1].Compatibility.Category)

	assert.Equal(t, "Anh Ba", res.Contacts[2].Name)
	assert.Equal(t, 15, res.Contacts[2].Compatibility.Score)
	assert.Equal(t, lich.Date{Day: 10, Month: 5, Year: 1996}, res.Contacts[2].BirthDate)

	for _, c := range res.Contacts {
		assert.Len(t, c.UID, 36)
	}
}

func TestRunSync_Web_Success(t *testing.T) {
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "https://dav.example.com/ab", "lan", "s3cret").
		Return(io.NopCloser(strings.NewReader(surveyCards)), nil)

	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: newYear2000},
		Fetcher: mockFetcher,
	}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		BirthYear: 1996,
		Mode:      config.SourceModeWeb,
		WebURL:    "https://dav.example.com/ab",
		WebUser:   "lan",
		WebPass:   "s3cret",
	})
	require.NoError(t, err)
	assert.Len(t, res.Contacts, 3)
	assert.NotEmpty(t, res.ICS)

	mockFetcher.AssertExpectations(t)
}

func TestRunSync_DateFormats_TableDriven(t *testing.T) {
	tests := []struct {
		name      string
		bdayValue string
		surveyed  bool
	}{
		{"ISO8601 Standard", "1990-10-25", true},
		{"Basic Format", "19901025", true},
		{"RFC3339", "1990-10-25T00:00:00Z", true},
		{"Truncated (Month-Day)", "--10-25", false},
		{"Truncated Basic", "--1025", false},
		{"Garbage Data", "not-a-date", false},
		{"Empty Date", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nBDAY:" + tt.bdayValue + "\nEND:VCARD"

			mockFetcher := new(MockFetcher)
			mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(io.NopCloser(strings.NewReader(content)), nil)

			gen := &engine.Generator{
				Clock:   MockClock{CurrentTime: newYear2000},
				Fetcher: mockFetcher,
			}

			res, err := gen.RunSync(context.Background(), engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"})
			require.NoError(t, err)

			if tt.surveyed {
				require.Len(t, res.Contacts, 1)
				assert.Equal(t, 1990, res.Contacts[0].BirthDate.Year)
			} else {
				assert.Empty(t, res.Contacts)
			}
		})
	}
}

func TestRunSync_SourceErrors(t *testing.T) {
	fetchErr := errors.New("network unreachable")
	failing := new(MockFetcher)
	failing.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, fetchErr)

	tests := []struct {
		name    string
		fetcher engine.VCardFetcher
		cfg     engine.SyncConfig
		wantErr string
	}{
		{"Local path empty", nil, engine.SyncConfig{Mode: config.SourceModeLocal}, config.ErrLocalPathEmpty},
		{"Local file missing", nil, engine.SyncConfig{Mode: config.SourceModeLocal, LocalPath: "/does/not/exist.vcf"}, config.ErrContactsSource},
		{"Web URL empty", nil, engine.SyncConfig{Mode: config.SourceModeWeb}, config.ErrWebURLEmpty},
		{"Fetcher missing", nil, engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"}, config.ErrFetcherMissing},
		{"Unsupported mode", nil, engine.SyncConfig{Mode: "ftp"}, config.ErrModeUnsupport},
		{"Network error", failing, engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://bad"}, fetchErr.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &engine.Generator{
				Clock:   MockClock{CurrentTime: newYear2000},
				Fetcher: tt.fetcher,
			}
			tt.cfg.HorizonDays = 1

			res, err := gen.RunSync(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NotEmpty(t, res.ICS, "the feed does not depend on the contacts source")
			assert.Nil(t, res.Contacts)
		})
	}
}

func TestRunSync_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &engine.Generator{Clock: MockClock{CurrentTime: newYear2000}}

	res, err := gen.RunSync(ctx, engine.SyncConfig{BirthYear: 1996})
	assert.Equal(t, context.Canceled, err)
	assert.Nil(t, res.ICS)
}

func TestSyncConfigFrom(t *testing.T) {
	s := config.DefaultSettings()
	s.BirthYear = 1988
	s.SourceMode = config.SourceModeWeb
	s.WebURL = "https://dav.example.com"
	s.WebUser = "lan"
	s.Reminder.Enabled = true

	cfg := engine.SyncConfigFrom(s, "pw")
	assert.Equal(t, engine.SyncConfig{
		BirthYear:       1988,
		Purpose:         config.DefaultPurpose,
		HorizonDays:     config.DefaultHorizonDays,
		ReminderTrigger: "-P1D",
		Mode:            config.SourceModeWeb,
		WebURL:          "https://dav.example.com",
		WebUser:         "lan",
		WebPass:         "pw",
	}, cfg)
}
