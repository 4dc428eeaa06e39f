package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-lich/internal/config"
)

var (
	// ErrAddressBookAuth is returned when the server rejects the stored
	// credentials (401/403); `go-lich password set` fixes it.
	ErrAddressBookAuth = errors.New(config.ErrFetchAuth)
	// ErrAddressBookTooLarge is returned by Read once the body grows past
	// the fetcher's limit.
	ErrAddressBookTooLarge = errors.New(config.ErrBookTooLarge)
)

// VCardFetcher retrieves the address book surveyed by the sync.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads a vCard export (CardDAV collection or plain .vcf
// URL) with optional Basic auth.
type HTTPFetcher struct {
	Client *http.Client

	// MaxBytes caps the body size; zero means config.MaxHTTPResponseSize.
	MaxBytes int64
}

// NewHTTPFetcher creates a fetcher with the default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: config.HTTPTimeout}}
}

// Fetch opens the address book at bookURL. The returned body fails with
// ErrAddressBookTooLarge rather than silently cutting the last vCard.
func (f *HTTPFetcher) Fetch(ctx context.Context, bookURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(bookURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, redactURL(u),
		config.LogKeyUser, user,
	)
	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchBadStat, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%w: %s", ErrAddressBookAuth, resp.Status)
	default:
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchBadStat, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%s: %s", config.ErrFetchStatus, resp.Status)
	}

	log.Info(config.MsgFetchOK, config.LogKeySizeBytes, resp.ContentLength)

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	return &cappedBody{body: resp.Body, remaining: limit}, nil
}

// redactURL drops credentials and the query string, which may carry tokens.
func redactURL(u *url.URL) string {
	clean := *u
	clean.User = nil
	clean.RawQuery = ""
	clean.Fragment = ""
	return clean.String()
}

// cappedBody passes through at most remaining bytes and reports
// ErrAddressBookTooLarge if the server has more to send.
type cappedBody struct {
	body      io.ReadCloser
	remaining int64
	over      bool
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.over {
		return 0, ErrAddressBookTooLarge
	}
	if b.remaining <= 0 {
		var extra [1]byte
		if n, _ := io.ReadFull(b.body, extra[:]); n > 0 {
			b.over = true
			return 0, ErrAddressBookTooLarge
		}
		return 0, io.EOF
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.body.Read(p)
	b.remaining -= int64(n)
	return n, err
}

func (b *cappedBody) Close() error { return b.body.Close() }
