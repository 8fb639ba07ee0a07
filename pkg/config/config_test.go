package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_AnalyticsConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("ANALYTICS_DEFAULT_RANGE", "90d")
	os.Setenv("ANALYTICS_ADAPTER_CACHE_CAPACITY", "250")
	defer func() {
		os.Unsetenv("ANALYTICS_DEFAULT_RANGE")
		os.Unsetenv("ANALYTICS_ADAPTER_CACHE_CAPACITY")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify analytics config
	assert.Equal(t, "90d", cfg.Analytics.DefaultRange)
	assert.Equal(t, 250, cfg.Analytics.AdapterCacheCapacity)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("ANALYTICS_DEFAULT_RANGE")
	os.Unsetenv("ANALYTICS_ADAPTER_CACHE_CAPACITY")
	os.Unsetenv("ANALYTICS_CLASSIFIER_CACHE_CAPACITY")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, "30d", cfg.Analytics.DefaultRange)
	assert.Equal(t, 1000, cfg.Analytics.AdapterCacheCapacity)
	assert.Equal(t, 200, cfg.Analytics.ClassifierCacheCapacity)
	assert.Equal(t, "testdata/appointments.json", cfg.Fixtures.AppointmentsPath)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	os.Setenv("ANALYTICS_ADAPTER_CACHE_CAPACITY", "not-a-number")
	defer os.Unsetenv("ANALYTICS_ADAPTER_CACHE_CAPACITY")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 1000, cfg.Analytics.AdapterCacheCapacity)
}
