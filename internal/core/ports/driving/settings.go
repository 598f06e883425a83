package driving

import "github.com/custodia-labs/stig-assist/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves current settings from config, environment and defaults.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single key.
	Set(key, value string) error

	// Entries returns the effective value of every known key, secrets masked.
	Entries() ([]SettingEntry, error)

	// Path returns the config file location.
	Path() string
}

// SettingEntry is one displayable configuration value.
type SettingEntry struct {
	Key    string
	Value  string
	Source string // "file", "env" or "default"
}
