package engine

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/lich"
	"github.com/tartampluch/go-lich/internal/messages"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	BirthYear       int    // Birth year of the feed owner
	Purpose         string // One of config.Purposes
	HorizonDays     int    // Number of days generated from today
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D"), empty for none

	Mode      string // config.SourceModeNone, SourceModeLocal or SourceModeWeb
	LocalPath string // Path to the .vcf file
	WebURL    string // CardDAV or WebDAV URL
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

// SyncConfigFrom maps user settings onto a SyncConfig. The password is
// resolved separately.
func SyncConfigFrom(s config.Settings, password string) SyncConfig {
	return SyncConfig{
		BirthYear:       s.BirthYear,
		Purpose:         s.Purpose,
		HorizonDays:     s.HorizonDays,
		ReminderTrigger: s.ReminderTrigger(),
		Mode:            s.SourceMode,
		LocalPath:       s.LocalPath,
		WebURL:          s.WebURL,
		WebUser:         s.WebUser,
		WebPass:         password,
	}
}

// SyncResult is the output of one synchronization.
type SyncResult struct {
	ICS      []byte
	Events   int
	Contacts []ContactAdvice
}

// Generator builds the advisory feed and the contact survey.
type Generator struct {
	Clock    Clock             // Interface for time mocking.
	Fetcher  VCardFetcher      // Interface for network abstraction.
	Messages *messages.Catalog // Localized texts; nil falls back to built-in phrasing.
}

// uidNamespace scopes every UUIDv5 produced by go-lich.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(config.ICalDomain))

// RunSync generates the iCalendar feed, then surveys contacts when a
// source is configured. When only the survey fails, the returned result
// still carries the feed alongside the error.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (SyncResult, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	today := Today(g.Clock)

	ics, events, err := g.generateFeed(ctx, cfg, today)
	if err != nil {
		return SyncResult{}, err
	}
	res := SyncResult{ICS: ics, Events: events}

	if cfg.Mode == "" || cfg.Mode == config.SourceModeNone {
		log.Debug(config.MsgSyncDone, config.LogKeyDuration, time.Since(start).Milliseconds())
		return res, nil
	}

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, fmt.Errorf("%s: %w", config.ErrContactsSource, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return res, err
	}

	contacts, err := g.surveyContacts(ctx, reader, today)
	if err != nil {
		return res, err
	}
	res.Contacts = contacts

	log.Debug(config.MsgSyncDone, config.LogKeyDuration, time.Since(start).Milliseconds())
	return res, nil
}

// acquireStream opens the appropriate data source based on configuration.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// generateFeed emits one all-day event per day in [today-1, today+horizon).
func (g *Generator) generateFeed(ctx context.Context, cfg SyncConfig, today lich.Date) ([]byte, int, error) {
	horizon := cfg.HorizonDays
	if horizon <= 0 {
		horizon = config.DefaultHorizonDays
	}
	horizon = min(horizon, config.MaxHorizonDays)

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropXWRTimezone, config.ICalTimezone)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Stamped with the start of today so every run of the same day
	// produces identical bytes (and the same ETag).
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(today.Time().UTC())

	for offset := -1; offset < horizon; offset++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		day := today.AddDays(offset)
		report := BuildDay(day, cfg.BirthYear, cfg.Purpose, g.Messages)

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, EventUID(day, cfg.BirthYear, report.Purpose))
		event.Props.Set(dtStampProp)

		summary := report.Summary(g.Messages)
		event.Props.SetText(config.PropSummary, summary)
		event.Props.SetText(config.PropDescription, report.Description(g.Messages))
		event.Props.SetText(config.PropCategories, report.DayKind)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(day.Time())
		event.Props.Set(dtStartProp)

		if cfg.ReminderTrigger != "" {
			addAlarm(event, cfg.ReminderTrigger, summary)
		}

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyDays, len(cal.Children),
		config.LogKeyBirthYear, cfg.BirthYear,
	)
	return buf.Bytes(), len(cal.Children), nil
}

// EventUID returns the stable identifier of the advisory of one day.
// Regenerating the feed keeps UIDs unchanged so clients update in place.
func EventUID(day lich.Date, birthYear int, purpose string) string {
	input := fmt.Sprintf(config.FormatHashInput, day.String(), strconv.Itoa(birthYear), purpose)
	return fmt.Sprintf(config.FormatUID, uuid.NewSHA1(uidNamespace, []byte(config.UIDSalt+input)), config.ICalDomain)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// surveyContacts decodes the vCard stream and scores every contact
// whose birthday carries a year against today.
func (g *Generator) surveyContacts(ctx context.Context, r io.Reader, today lich.Date) ([]ContactAdvice, error) {
	src := &trackedReader{r: r}
	decoder := vcard.NewDecoder(src)
	stats := struct{ processed, surveyed int }{}
	var contacts []ContactAdvice

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		// A broken stream is not a malformed card; the rest of the book is lost.
		if src.err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrBookRead, src.err)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
			name = n.Value
		}

		birth, yearKnown, err := parseDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}
		if !yearKnown {
			slog.Debug(config.MsgSkippedNoYear,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name)
			continue
		}

		contacts = append(contacts, AdviseContact(name, birth, today))
		stats.surveyed++
	}

	// Best matches first, then alphabetical for stability.
	slices.SortStableFunc(contacts, func(a, b ContactAdvice) int {
		if c := cmp.Compare(b.Compatibility.Score, a.Compatibility.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	slog.Info(config.MsgContactsDone,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.surveyed),
		),
	)
	return contacts, nil
}

// trackedReader remembers the first non-EOF read error so that it can be
// told apart from a malformed card.
type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}

// AdviseContact scores one contact born on birth against day.
func AdviseContact(name string, birth, day lich.Date) ContactAdvice {
	compat := lich.CheckAgeCompatibility(birth.Year, day)
	input := fmt.Sprintf(config.FormatHashInput, name, birth.String(), config.UIDSalt)
	return ContactAdvice{
		UID:           uuid.NewSHA1(uidNamespace, []byte(input)).String(),
		Name:          name,
		BirthDate:     birth,
		BirthChi:      lich.BirthChi(birth.Year),
		Age:           day.Year - birth.Year,
		Compatibility: compat,
		Band:          lich.BandOf(compat.Score),
	}
}

// parseDate handles various vCard date formats. Truncated --MM-DD dates
// parse successfully with yearKnown false.
func parseDate(value string) (lich.Date, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return lich.Date{Day: t.Day(), Month: int(t.Month()), Year: t.Year()}, true, nil
		}
	}

	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return lich.Date{Day: t.Day(), Month: int(t.Month())}, false, nil
		}
	}

	return lich.Date{}, false, errors.New(config.ErrDateParse)
}
