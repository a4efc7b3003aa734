package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/conciliar/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/conciliar/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *settings)
}

func TestSettingsService_Get_CustomDefaults(t *testing.T) {
	defaults := domain.DefaultSettings()
	defaults.ReportDir = "/home/ana/.conciliar/reports"
	store := memory.NewConfigStore()
	service := NewSettingsServiceWithDefaults(store, defaults)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "/home/ana/.conciliar/reports", settings.ReportDir)
	assert.Equal(t, defaults, service.GetDefaults())

	_ = store.Set("report.dir", "/tmp/reports")
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports", settings.ReportDir)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("reconcile.insurer", "Mapfre")
	_ = store.Set("reconcile.mode", "secondary")
	_ = store.Set("reconcile.primary_format", "collections")
	_ = store.Set("report.dir", "/tmp/reports")
	_ = store.Set("archive.enabled", false)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, "Mapfre", settings.Insurer)
	assert.Equal(t, domain.ModeSecondary, settings.Mode)
	assert.Equal(t, domain.FormatCollections, settings.PrimaryFormat)
	assert.Equal(t, "/tmp/reports", settings.ReportDir)
	assert.False(t, settings.ArchiveEnabled)
}

func TestSettingsService_Get_InvalidStoredValue(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("reconcile.mode", "everything")

	_, err := NewSettingsService(store).Get()

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "Mode")
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set("reconcile.mode", "primary"))
	require.NoError(t, service.Set("archive.enabled", "false"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.ModePrimary, settings.Mode)
	assert.False(t, settings.ArchiveEnabled)
	assert.Equal(t, 2, store.Saves())
}

func TestSettingsService_Set_RepairsInvalidStoredValue(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("reconcile.mode", "everything")
	service := NewSettingsService(store)

	require.NoError(t, service.Set("reconcile.mode", "both"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeBoth, settings.Mode)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"bad mode", "reconcile.mode", "all"},
		{"bad format", "reconcile.primary_format", "pdf"},
		{"empty insurer", "reconcile.insurer", ""},
		{"same source names", "sources.secondary_name", "SOFTSEGUROS"},
		{"bad bool", "archive.enabled", "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store)

			err := service.Set(tt.key, tt.value)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Zero(t, store.Saves())
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	keys := service.Keys()
	assert.Contains(t, keys, "reconcile.insurer")
	assert.Contains(t, keys, "archive.enabled")

	keys[0] = "changed"
	assert.Equal(t, "reconcile.insurer", service.Keys()[0])
}

func TestValidateSettings(t *testing.T) {
	s := domain.DefaultSettings()
	require.NoError(t, ValidateSettings(&s))

	s.PrimaryName = ""
	assert.ErrorIs(t, ValidateSettings(&s), domain.ErrInvalidInput)
}
