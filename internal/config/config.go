package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPAddr string

	// DataDir is the private storage directory that holds both store
	// files and the settings file.
	DataDir string

	AnalysisBaseURL string
	AnalysisTimeout time.Duration

	// Discovery polling chain: two short-delay attempts followed by a
	// final long-delay attempt.
	DiscoveryRetryDelay time.Duration
	DiscoveryFinalDelay time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:             getenv("APP_SERVICE", "openinventory"),
		AppVersion:          getenv("APP_VERSION", "0.1.0"),
		Environment:         getenv("ENVIRONMENT", "development"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		DataDir:             getenv("DATA_DIR", "data"),
		AnalysisBaseURL:     strings.TrimRight(getenv("ANALYSIS_BASE_URL", "http://localhost:8000"), "/"),
		AnalysisTimeout:     getenvDuration("ANALYSIS_TIMEOUT", 30*time.Second),
		DiscoveryRetryDelay: getenvDuration("DISCOVERY_RETRY_DELAY", time.Minute),
		DiscoveryFinalDelay: getenvDuration("DISCOVERY_FINAL_DELAY", 3*time.Minute),
	}
}

const (
	storeFile     = "inventory.db"
	authStoreFile = "inventory.auth.db"
	settingsFile  = "app_settings.json"
)

// StorePath is the fixed location of the single-tenant store file.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, storeFile)
}

// AuthStorePath is the fixed, distinct location of the multi-tenant store file.
func (c Config) AuthStorePath() string {
	return filepath.Join(c.DataDir, authStoreFile)
}

func (c Config) SettingsPath() string {
	return filepath.Join(c.DataDir, settingsFile)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
