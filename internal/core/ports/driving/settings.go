package driving

import "github.com/custodia-labs/sercha-chat/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults applied.
	Get() domain.Settings

	// Set validates and persists a single setting by key.
	Set(key, value string) error

	// Keys lists the settable keys in display order.
	Keys() []string

	// Value formats the effective value of a key, defaults applied.
	Value(key string) (string, error)
}
