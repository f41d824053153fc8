package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration shared by the CLI and the API server
type Config struct {
	// Environment
	Environment string
	Port        string

	// Conversion
	MIDITempo      float64 // tempo written to MIDI previews
	MaxUploadBytes int64   // upper bound for uploaded charts

	// Observability
	SentryDSN string // Sentry DSN for error tracking
	Release   string
}

const defaultMaxUploadBytes = 8 << 20

// Load reads an optional .env file and then the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() *Config {
	return &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           getEnv("PORT", "8080"),
		MIDITempo:      getEnvFloat("DTX2SSC_MIDI_TEMPO", 120),
		MaxUploadBytes: getEnvInt("DTX2SSC_MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		Release:        getEnv("RELEASE_VERSION", "dev"),
	}
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SentryEnabled reports whether error tracking is configured
func (c *Config) SentryEnabled() bool {
	return c.SentryDSN != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		log.Printf("Ignoring invalid %s=%q", key, value)
		return defaultValue
	}
	return f
}

func getEnvInt(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("Ignoring invalid %s=%q", key, value)
		return defaultValue
	}
	return n
}
