// Package messages renders the human-readable Vietnamese texts of the
// advisory (event summaries, advice sentences, category explanations)
// from an embedded go-i18n catalogue.
package messages

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lich/internal/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog translates message keys. A nil *Catalog is usable and returns
// the built-in fallbacks.
type Catalog struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	langs     []string
}

// New loads every embedded locales/active.<lang>.json file.
func New() (*Catalog, error) {
	bundle := i18n.NewBundle(language.Vietnamese)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	c := &Catalog{bundle: bundle}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		c.langs = append(c.langs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	c.localizer = i18n.NewLocalizer(bundle, config.DefaultLanguage)
	return c, nil
}

// Languages returns the language codes found in the embedded catalogue.
func (c *Catalog) Languages() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.langs...)
}

// Get translates key, or returns "" when it is missing.
func (c *Catalog) Get(key string) string {
	return c.Format(key, nil)
}

// Format translates key with template data, or returns "" when it is missing.
func (c *Catalog) Format(key string, data map[string]any) string {
	if c == nil || c.localizer == nil {
		return ""
	}
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return ""
	}
	return msg
}

// Summary renders the one-line event title, e.g. "Giáp Tý · Tam Hợp (95%)".
func (c *Catalog) Summary(dayLabel, category string, score int) string {
	msg := c.Format(config.TKeyEvtSummary, map[string]any{
		"DayLabel": dayLabel,
		"Category": category,
		"Score":    score,
	})
	if msg == "" {
		return fmt.Sprintf(config.FallbackSummary, dayLabel, category, score)
	}
	return msg
}

// Advice renders the purpose sentence for a compatibility label such as
// "Tuyệt vời (Tam Hợp)". The label is lower-cased in Vietnamese.
func (c *Catalog) Advice(purpose, category string) string {
	category = cases.Lower(language.Vietnamese).String(category)
	msg := c.Format(config.TKeyAdvice, map[string]any{
		"Purpose":  purpose,
		"Category": category,
	})
	if msg == "" {
		return fmt.Sprintf(config.FallbackAdvice, purpose, category)
	}
	return msg
}

// Explain returns the explanation of a compatibility category key
// ("tam_hop", "luc_xung", ...).
func (c *Catalog) Explain(categoryKey string) string {
	return c.Get(config.TKeyCategoryPrefix + categoryKey)
}

// DayKind returns the Hoàng Đạo or Hắc Đạo label.
func (c *Catalog) DayKind(hoangDao bool) string {
	key := config.TKeyHacDaoDay
	if hoangDao {
		key = config.TKeyHoangDaoDay
	}
	if msg := c.Get(key); msg != "" {
		return msg
	}
	if hoangDao {
		return config.FallbackHoangDao
	}
	return config.FallbackHacDao
}
