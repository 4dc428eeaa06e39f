package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tartampluch/go-lich/internal/config"
	"github.com/tartampluch/go-lich/internal/engine"
	"github.com/tartampluch/go-lich/internal/lich"
	"github.com/tartampluch/go-lich/internal/messages"
	"github.com/tartampluch/go-lich/internal/metrics"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// dayKey identifies a memoized day report.
type dayKey struct {
	date    lich.Date
	birth   int
	purpose string
}

// CalendarServer serves the advisory feed and the JSON API.
type CalendarServer struct {
	// cache and contacts use atomic.Pointer for lock-free reads; they are
	// replaced wholesale by the refresh worker.
	cache    atomic.Pointer[cacheItem]
	contacts atomic.Pointer[[]engine.ContactAdvice]
	days     *expirable.LRU[dayKey, engine.DayReport]

	Port string

	// Defaults applied when a query omits birth or purpose.
	BirthYear int
	Purpose   string

	Clock    engine.Clock
	Messages *messages.Catalog
}

// NewCalendarServer creates a server with default querent settings.
func NewCalendarServer(port string) *CalendarServer {
	return &CalendarServer{
		Port:      port,
		BirthYear: config.DefaultBirthYear,
		Purpose:   config.DefaultPurpose,
		Clock:     engine.RealClock{},
		days:      expirable.NewLRU[dayKey, engine.DayReport](config.DayCacheSize, nil, config.DayCacheTTL),
	}
}

// Handler builds the chi router.
func (s *CalendarServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(requestLogger)

	r.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	r.HandleFunc(config.RouteFeed, s.handleCalendarRequest)
	r.Get(config.RouteHealth, s.handleHealth)
	r.Method(http.MethodGet, config.RouteMetrics, metrics.Handler())

	r.Route(config.RouteAPI, func(r chi.Router) {
		r.Get(config.RouteDay, s.handleDay)
		r.Get(config.RouteMonth, s.handleMonth)
		r.Get(config.RouteHours, s.handleHours)
		r.Get(config.RouteCompat, s.handleCompat)
		r.Get(config.RouteContacts, s.handleContacts)
	})
	return r
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateCache atomically replaces the served calendar. Identical content
// keeps its previous Last-Modified so conditional requests stay valid.
func (s *CalendarServer) UpdateCache(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	if prev := s.cache.Load(); prev != nil && prev.etag == etag {
		slog.Debug(config.MsgCacheSame,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyETag, etag,
		)
		return
	}

	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: s.now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

func (s *CalendarServer) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// SetContacts replaces the contact survey served on /api/contacts.
func (s *CalendarServer) SetContacts(contacts []engine.ContactAdvice) {
	if contacts == nil {
		contacts = []engine.ContactAdvice{}
	}
	s.contacts.Store(&contacts)

	slog.Debug(config.MsgContactsSet,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyCount, len(contacts),
	)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

func (s *CalendarServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	_, _ = io.WriteString(w, config.HTTPMsgOK)
}

// requestLogger logs every request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug(config.MsgRequest,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyMethod, r.Method,
			config.LogKeyPath, r.URL.Path,
			config.LogKeyStatus, ww.Status(),
			config.LogKeyDuration, time.Since(start).Milliseconds(),
			config.LogKeyRequestID, middleware.GetReqID(r.Context()),
		)
	})
}
