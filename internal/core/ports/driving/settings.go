package driving

import "github.com/custodia-labs/conciliar/internal/core/domain"

// SettingsService manages reconciliation settings.
type SettingsService interface {
	// Get returns the stored settings merged over the defaults.
	Get() (*domain.Settings, error)

	// Set validates and persists one setting by key (e.g., "reconcile.mode").
	Set(key, value string) error

	// Keys returns the supported setting keys in display order.
	Keys() []string

	// Validate checks settings for consistency.
	Validate(settings *domain.Settings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
