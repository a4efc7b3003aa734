package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyInsurer        = "reconcile.insurer"
	keyMode           = "reconcile.mode"
	keyPrimaryFormat  = "reconcile.primary_format"
	keyPrimaryName    = "sources.primary_name"
	keySecondaryName  = "sources.secondary_name"
	keyReportDir      = "report.dir"
	keyArchiveEnabled = "archive.enabled"
)

var settingKeys = []string{
	keyInsurer,
	keyMode,
	keyPrimaryFormat,
	keyPrimaryName,
	keySecondaryName,
	keyReportDir,
	keyArchiveEnabled,
}

var validate = validator.New()

// ValidateSettings checks settings for consistency.
// Validation failures wrap domain.ErrInvalidInput.
func ValidateSettings(settings *domain.Settings) error {
	err := validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate settings: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %q)", fe.Field(), fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

// SettingsService manages reconciliation settings.
type SettingsService struct {
	configStore driven.ConfigStore
	defaults    domain.Settings
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return NewSettingsServiceWithDefaults(configStore, domain.DefaultSettings())
}

// NewSettingsServiceWithDefaults creates a settings service whose unset keys
// fall back to defaults instead of domain.DefaultSettings.
func NewSettingsServiceWithDefaults(configStore driven.ConfigStore, defaults domain.Settings) *SettingsService {
	return &SettingsService{configStore: configStore, defaults: defaults}
}

// Get returns the stored settings merged over the defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := s.read()
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("stored settings in %s: %w", s.configStore.Path(), err)
	}
	return settings, nil
}

// read merges stored values over the defaults without validating them.
func (s *SettingsService) read() *domain.Settings {
	defaults := s.defaults

	return &domain.Settings{
		Insurer:        s.getString(keyInsurer, defaults.Insurer),
		Mode:           domain.Mode(s.getString(keyMode, string(defaults.Mode))),
		PrimaryFormat:  domain.Format(s.getString(keyPrimaryFormat, string(defaults.PrimaryFormat))),
		PrimaryName:    s.getString(keyPrimaryName, defaults.PrimaryName),
		SecondaryName:  s.getString(keySecondaryName, defaults.SecondaryName),
		ReportDir:      s.getString(keyReportDir, defaults.ReportDir),
		ArchiveEnabled: s.getBool(keyArchiveEnabled, defaults.ArchiveEnabled),
	}
}

// Set changes one setting, validates the resulting settings and saves them.
func (s *SettingsService) Set(key, value string) error {
	settings := s.read()

	var stored any = value
	switch key {
	case keyInsurer:
		settings.Insurer = value
	case keyMode:
		settings.Mode = domain.Mode(value)
	case keyPrimaryFormat:
		settings.PrimaryFormat = domain.Format(value)
	case keyPrimaryName:
		settings.PrimaryName = value
	case keySecondaryName:
		settings.SecondaryName = value
	case keyReportDir:
		settings.ReportDir = value
	case keyArchiveEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		settings.ArchiveEnabled = b
		stored = b
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := ValidateSettings(settings); err != nil {
		return err
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Keys returns the supported setting keys in display order.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// Validate checks settings for consistency.
func (s *SettingsService) Validate(settings *domain.Settings) error {
	return ValidateSettings(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return s.defaults
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
