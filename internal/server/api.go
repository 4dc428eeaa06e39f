package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/engine"
	"github.com/tartampluch/go-lich/internal/lich"
	"github.com/tartampluch/go-lich/internal/metrics"
)

// dayQuery is the validated form of /api/day and /api/compat parameters.
type dayQuery struct {
	Date    lich.Date
	Birth   int    `validate:"min=1,max=9999"`
	Purpose string `validate:"purpose"`
}

type monthQuery struct {
	Year  int `validate:"min=1,max=9999"`
	Month int `validate:"min=1,max=12"`
}

// HoursResponse is the body of /api/hours/{chi}.
type HoursResponse struct {
	Branch      lich.Chi    `json:"branch"`
	HoangDaoDay bool        `json:"hoangDaoDay"`
	Hours       []lich.Hour `json:"hours"`
}

// CompatResponse is the body of /api/compat.
type CompatResponse struct {
	Date          lich.Date          `json:"date"`
	BirthYear     int                `json:"birthYear"`
	Compatibility lich.Compatibility `json:"compatibility"`
	Band          lich.Band          `json:"band"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *CalendarServer) handleDay(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseDayQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	key := dayKey{date: q.Date, birth: q.Birth, purpose: q.Purpose}
	if report, ok := s.days.Get(key); ok {
		metrics.DayCacheLookups.WithLabelValues(metrics.ResultHit).Inc()
		slog.Debug(config.MsgDayCacheHit,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyDate, q.Date.String(),
		)
		writeJSON(w, http.StatusOK, report)
		return
	}
	metrics.DayCacheLookups.WithLabelValues(metrics.ResultMiss).Inc()

	report := engine.BuildDay(q.Date, q.Birth, q.Purpose, s.Messages)
	s.days.Add(key, report)
	writeJSON(w, http.StatusOK, report)
}

func (s *CalendarServer) handleCompat(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseDayQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	compat := lich.CheckAgeCompatibility(q.Birth, q.Date)
	writeJSON(w, http.StatusOK, CompatResponse{
		Date:          q.Date,
		BirthYear:     q.Birth,
		Compatibility: compat,
		Band:          lich.BandOf(compat.Score),
	})
}

func (s *CalendarServer) handleMonth(w http.ResponseWriter, r *http.Request) {
	today := engine.Today(s.Clock)
	q := monthQuery{Year: today.Year, Month: today.Month}

	var err error
	if q.Year, err = intParam(r, config.ParamYear, q.Year); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if q.Month, err = intParam(r, config.ParamMonth, q.Month); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := config.Validator().Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%s: %w", config.ErrBadQuery, err))
		return
	}

	grid, err := engine.BuildMonth(q.Year, q.Month, today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

func (s *CalendarServer) handleHours(w http.ResponseWriter, r *http.Request) {
	branch, err := parseBranch(chi.URLParam(r, config.ParamChi))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, HoursResponse{
		Branch:      branch,
		HoangDaoDay: lich.IsHoangDaoDay(branch),
		Hours:       lich.AuspiciousHours(branch),
	})
}

func (s *CalendarServer) handleContacts(w http.ResponseWriter, _ *http.Request) {
	contacts := s.contacts.Load()
	if contacts == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("%s", config.HTTPMsgInitializing))
		return
	}
	writeJSON(w, http.StatusOK, *contacts)
}

// parseDayQuery reads date, birth and purpose, falling back to today and
// the server defaults, and validates the result.
func (s *CalendarServer) parseDayQuery(r *http.Request) (dayQuery, error) {
	q := dayQuery{
		Date:    engine.Today(s.Clock),
		Birth:   s.BirthYear,
		Purpose: s.Purpose,
	}

	values := r.URL.Query()
	if v := values.Get(config.ParamDate); v != "" {
		d, err := lich.ParseDate(v)
		if err != nil {
			return q, err
		}
		q.Date = d
	}

	var err error
	if q.Birth, err = intParam(r, config.ParamBirth, q.Birth); err != nil {
		return q, err
	}
	if v := values.Get(config.ParamPurpose); v != "" {
		q.Purpose = v
	}

	if err := config.Validator().Struct(q); err != nil {
		return q, fmt.Errorf("%s: %w", config.ErrBadQuery, err)
	}
	return q, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", config.ErrBadQuery, name, err)
	}
	return n, nil
}

// parseBranch accepts a branch name or its index 0..11.
func parseBranch(v string) (lich.Chi, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 11 {
			return 0, fmt.Errorf("%w: %d", lich.ErrInvalidChi, n)
		}
		return lich.Chi(n), nil
	}
	return lich.ParseChi(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
