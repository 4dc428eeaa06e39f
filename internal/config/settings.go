package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings holds the user-editable runtime configuration.
// The CardDAV password is not part of it; it lives in the OS keyring.
type Settings struct {
	Port        int    `yaml:"port" validate:"min=1,max=65535"`
	BirthYear   int    `yaml:"birth_year" validate:"min=1,max=9999"`
	Purpose     string `yaml:"purpose" validate:"purpose"`
	HorizonDays int    `yaml:"horizon_days" validate:"min=1,max=366"`
	RefreshMin  int    `yaml:"refresh_interval_min" validate:"min=0"`

	SourceMode string `yaml:"source_mode" validate:"oneof=none local web"`
	LocalPath  string `yaml:"local_path"`
	WebURL     string `yaml:"web_url" validate:"omitempty,url"`
	WebUser    string `yaml:"web_user"`

	Reminder Reminder `yaml:"reminder"`
}

// Reminder describes an optional VALARM attached to every advisory event.
type Reminder struct {
	Enabled   bool   `yaml:"enabled"`
	Value     int    `yaml:"value" validate:"min=0"`
	Unit      string `yaml:"unit" validate:"omitempty,oneof=d h m"`
	Direction string `yaml:"direction" validate:"omitempty,oneof=before after"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Port:        DefaultPort,
		BirthYear:   DefaultBirthYear,
		Purpose:     DefaultPurpose,
		HorizonDays: DefaultHorizonDays,
		RefreshMin:  DefaultRefreshMin,
		SourceMode:  SourceModeNone,
		Reminder: Reminder{
			Value:     DefaultReminderValue,
			Unit:      UnitDays,
			Direction: DirBefore,
		},
	}
}

var settingsValidator = newSettingsValidator()

func newSettingsValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("purpose", func(fl validator.FieldLevel) bool {
		return IsPurpose(fl.Field().String())
	})
	return v
}

// IsPurpose reports whether p is one of the fixed purposes.
func IsPurpose(p string) bool {
	return slices.Contains(Purposes, p)
}

// Validator exposes the shared validator instance so that other layers
// (HTTP query binding) apply the same custom rules.
func Validator() *validator.Validate {
	return settingsValidator
}

// Validate checks every field against its constraints.
func (s Settings) Validate() error {
	if err := settingsValidator.Struct(s); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}
	return nil
}

// ReminderTrigger converts the reminder into an RFC 5545 duration
// (e.g. "-P1D", "-PT2H"). It returns "" when reminders are disabled.
func (s Settings) ReminderTrigger() string {
	r := s.Reminder
	if !r.Enabled {
		return ""
	}
	val := r.Value
	if val <= 0 {
		val = DefaultReminderValue
	}

	sign := ISOPeriodPrefix
	if r.Direction != DirAfter {
		sign = ISONegativePrefix
	}

	switch r.Unit {
	case UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, val, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, val, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, val, ISODay)
	}
}

// DefaultSettingsPath returns <UserConfigDir>/<AppID>/settings.yaml.
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, AppID, SettingsFileName), nil
}

// LoadSettings reads the YAML file at path, applies .env and LICH_*
// environment overrides, and validates the result.
// A missing file is not an error: defaults are used instead.
func LoadSettings(path string) (Settings, error) {
	log := slog.With(LogKeyComponent, CompSettings)
	s := DefaultSettings()

	if err := godotenv.Load(EnvFileName); err != nil {
		log.Debug(MsgEnvMissing, LogKeyError, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug(MsgSettingsNone, LogKeyFile, path)
		case err != nil:
			return s, fmt.Errorf("%s: %w", ErrSettingsRead, err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("%s: %w", ErrSettingsParse, err)
			}
			log.Debug(MsgSettingsOK, LogKeyFile, path)
		}
	}

	if err := applyEnv(&s, os.LookupEnv); err != nil {
		return s, err
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// applyEnv overlays environment variables on top of the file settings.
func applyEnv(s *Settings, lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvPort, &s.Port},
		{EnvBirthYear, &s.BirthYear},
		{EnvHorizon, &s.HorizonDays},
		{EnvRefresh, &s.RefreshMin},
		{EnvReminderValue, &s.Reminder.Value},
	}
	for _, it := range ints {
		if v, ok := lookup(it.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", ErrEnvOverride, it.key, err)
			}
			*it.dst = n
		}
	}

	strs := []struct {
		key string
		dst *string
	}{
		{EnvPurpose, &s.Purpose},
		{EnvMode, &s.SourceMode},
		{EnvLocalPath, &s.LocalPath},
		{EnvWebURL, &s.WebURL},
		{EnvWebUser, &s.WebUser},
		{EnvReminderUnit, &s.Reminder.Unit},
		{EnvReminderDirection, &s.Reminder.Direction},
	}
	for _, it := range strs {
		if v, ok := lookup(it.key); ok && v != "" {
			*it.dst = v
		}
	}

	if v, ok := lookup(EnvReminderEnabled); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", ErrEnvOverride, EnvReminderEnabled, err)
		}
		s.Reminder.Enabled = b
	}
	return nil
}
