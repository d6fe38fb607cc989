package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	homeDir := getDefaultHomeDir()

	return &Config{
		Core: CoreConfig{
			HomeDir: homeDir,
			DataDir: filepath.Join(homeDir, "data"),
			Timeout: 5 * time.Minute,
			Debug:   false,
		},
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Neo4j: Neo4jConfig{
			URI:               "bolt://localhost:7687",
			Username:          "neo4j",
			Password:          os.Getenv("NEO4J_PASSWORD"),
			Database:          "neo4j",
			MaxConnections:    25,
			ConnectionTimeout: 30 * time.Second,
		},
		ETA: ETAConfig{
			SamplesPath: filepath.Join(homeDir, "eta_samples.db"),
			MinSamples:  5,
			FallbackKmh: 30,
		},
		Geocode: GeocodeConfig{
			BaseURL:        "https://nominatim.openstreetmap.org",
			UserAgent:      "badminton-stringing-service/1.0",
			Timeout:        10 * time.Second,
			RequestsPerSec: 1,
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
			BaseURL:    "https://api.twilio.com",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "",
		},
	}
}

// getDefaultHomeDir returns the default service home directory.
// It uses ~/.stringing or falls back to a temporary directory if user home
// cannot be determined.
func getDefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".stringing")
	}
	return filepath.Join(userHome, ".stringing")
}
