package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Analytics   AnalyticsConfig
	Fixtures    FixturesConfig
	OTEL        OTELConfig
}

// AnalyticsConfig holds aggregation engine configuration
type AnalyticsConfig struct {
	// DefaultRange is the symbolic date-range option used when the caller
	// does not supply one: 7d, 30d, 90d, ytd or all.
	DefaultRange string

	// AdapterCacheCapacity bounds the per-record adaptation cache.
	AdapterCacheCapacity int

	// ClassifierCacheCapacity bounds the today/future/past classification
	// cache.
	ClassifierCacheCapacity int

	// RefreshIntervalMs is consumed by the host's refetch policy, not by
	// the engine itself.
	RefreshIntervalMs int
}

// FixturesConfig holds record fixture locations for the report CLI
type FixturesConfig struct {
	AppointmentsPath string
	PatientsPath     string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		Analytics: AnalyticsConfig{
			DefaultRange:            getEnv("ANALYTICS_DEFAULT_RANGE", "30d"),
			AdapterCacheCapacity:    getEnvAsInt("ANALYTICS_ADAPTER_CACHE_CAPACITY", 1000),
			ClassifierCacheCapacity: getEnvAsInt("ANALYTICS_CLASSIFIER_CACHE_CAPACITY", 200),
			RefreshIntervalMs:       getEnvAsInt("ANALYTICS_REFRESH_INTERVAL_MS", 60000),
		},
		Fixtures: FixturesConfig{
			AppointmentsPath: getEnv("FIXTURES_APPOINTMENTS_PATH", "testdata/appointments.json"),
			PatientsPath:     getEnv("FIXTURES_PATIENTS_PATH", "testdata/patients.json"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "clinic-dashboard-analytics"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
