package config

import (
	"time"
)

// Config is the root configuration for the stringing service.
type Config struct {
	Core    CoreConfig    `mapstructure:"core" yaml:"core" validate:"required"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Neo4j   Neo4jConfig   `mapstructure:"neo4j" yaml:"neo4j" validate:"required"`
	ETA     ETAConfig     `mapstructure:"eta" yaml:"eta"`
	Geocode GeocodeConfig `mapstructure:"geocode" yaml:"geocode"`
	Twilio  TwilioConfig  `mapstructure:"twilio" yaml:"twilio,omitempty"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// CoreConfig contains core application settings.
type CoreConfig struct {
	HomeDir string        `mapstructure:"home_dir" yaml:"home_dir"`
	DataDir string        `mapstructure:"data_dir" yaml:"data_dir"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`
	Debug   bool          `mapstructure:"debug" yaml:"debug"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Neo4jConfig contains Neo4j connection settings.
type Neo4jConfig struct {
	URI               string        `mapstructure:"uri" yaml:"uri"`
	Username          string        `mapstructure:"username" yaml:"username"`
	Password          string        `mapstructure:"password" yaml:"password"`
	Database          string        `mapstructure:"database" yaml:"database"`
	MaxConnections    int           `mapstructure:"max_connections" yaml:"max_connections" validate:"omitempty,min=1,max=500"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout"`
}

// ETAConfig contains the delivery-time predictor settings.
type ETAConfig struct {
	SamplesPath string  `mapstructure:"samples_path" yaml:"samples_path"`
	MinSamples  int     `mapstructure:"min_samples" yaml:"min_samples" validate:"omitempty,min=2"`
	FallbackKmh float64 `mapstructure:"fallback_kmh" yaml:"fallback_kmh"`
}

// GeocodeConfig contains address geocoding settings.
type GeocodeConfig struct {
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
}

// TwilioConfig contains SMS notification settings. Notifications are
// disabled when AccountSID is empty.
type TwilioConfig struct {
	AccountSID string `mapstructure:"account_sid" yaml:"account_sid,omitempty"`
	AuthToken  string `mapstructure:"auth_token" yaml:"auth_token,omitempty"`
	FromNumber string `mapstructure:"from_number" yaml:"from_number,omitempty"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// Enabled reports whether SMS notifications are configured.
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}
