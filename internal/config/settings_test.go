package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr bool
	}{
		{"Defaults", func(s *Settings) {}, false},
		{"Port zero", func(s *Settings) { s.Port = 0 }, true},
		{"Port too high", func(s *Settings) { s.Port = 70000 }, true},
		{"Birth year zero", func(s *Settings) { s.BirthYear = 0 }, true},
		{"Unknown purpose", func(s *Settings) { s.Purpose = "Đi chợ" }, true},
		{"Known purpose", func(s *Settings) { s.Purpose = "Cưới hỏi" }, false},
		{"Horizon too long", func(s *Settings) { s.HorizonDays = 400 }, true},
		{"Bad mode", func(s *Settings) { s.SourceMode = "ftp" }, true},
		{"Web mode with URL", func(s *Settings) {
			s.SourceMode = SourceModeWeb
			s.WebURL = "https://dav.example.com/contacts"
		}, false},
		{"Malformed URL", func(s *Settings) { s.WebURL = "not a url" }, true},
		{"Bad reminder unit", func(s *Settings) { s.Reminder.Unit = "w" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), ErrSettingsInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettings_ReminderTrigger(t *testing.T) {
	tests := []struct {
		name        string
		reminder    Reminder
		wantTrigger string
	}{
		{"Disabled", Reminder{Enabled: false, Value: 1, Unit: UnitDays}, ""},
		{"1 Day Before", Reminder{Enabled: true, Value: 1, Unit: UnitDays, Direction: DirBefore}, "-P1D"},
		{"2 Hours After", Reminder{Enabled: true, Value: 2, Unit: UnitHours, Direction: DirAfter}, "PT2H"},
		{"30 Minutes Before", Reminder{Enabled: true, Value: 30, Unit: UnitMinutes, Direction: DirBefore}, "-PT30M"},
		{"Zero value falls back", Reminder{Enabled: true, Value: 0, Unit: UnitDays, Direction: DirBefore}, "-P1D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.Reminder = tt.reminder
			assert.Equal(t, tt.wantTrigger, s.ReminderTrigger())
		})
	}
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().Port, s.Port)
	assert.Equal(t, DefaultPurpose, s.Purpose)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	content := "port: 19000\nbirth_year: 1996\npurpose: Ký kết\nhorizon_days: 30\n"
	require.NoError(t, os.WriteFile(path, []byte(content), FilePermUserRW))

	t.Setenv(EnvBirthYear, "1988")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 19000, s.Port)
	assert.Equal(t, 1988, s.BirthYear, "environment must override the file")
	assert.Equal(t, "Ký kết", s.Purpose)
	assert.Equal(t, 30, s.HorizonDays)
}

func TestLoadSettings_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: [unclosed"), FilePermUserRW))
	_, err := LoadSettings(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrSettingsParse)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("port: 0\n"), FilePermUserRW))
	_, err = LoadSettings(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrSettingsInvalid)
}

func TestApplyEnv_BadInteger(t *testing.T) {
	s := DefaultSettings()
	lookup := func(k string) (string, bool) {
		if k == EnvPort {
			return "eighty", true
		}
		return "", false
	}
	err := applyEnv(&s, lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvPort)
}

func TestApplyEnv_RefreshAndReminder(t *testing.T) {
	env := map[string]string{
		EnvRefresh:           "15",
		EnvReminderEnabled:   "true",
		EnvReminderValue:     "2",
		EnvReminderUnit:      UnitHours,
		EnvReminderDirection: DirBefore,
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	s := DefaultSettings()
	require.NoError(t, applyEnv(&s, lookup))

	assert.Equal(t, 15, s.RefreshMin)
	assert.True(t, s.Reminder.Enabled)
	assert.Equal(t, 2, s.Reminder.Value)
	assert.Equal(t, "-PT2H", s.ReminderTrigger())
	require.NoError(t, s.Validate())
}

func TestApplyEnv_BadReminderFlag(t *testing.T) {
	s := DefaultSettings()
	err := applyEnv(&s, func(k string) (string, bool) {
		if k == EnvReminderEnabled {
			return "sometimes", true
		}
		return "", false
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvReminderEnabled)
	assert.False(t, s.Reminder.Enabled)
}
