package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// Loader handles loading configuration from files.
type Loader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperLoader implements Loader using Viper.
type viperLoader struct {
	validator Validator
}

// NewLoader creates a new Loader instance.
func NewLoader(validator Validator) Loader {
	return &viperLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path.
// Returns an error if the file doesn't exist or cannot be parsed.
func (l *viperLoader) Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, types.WrapError(types.CONFIG_NOT_FOUND, "config file does not exist", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	applyInterpolation(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "configuration validation failed", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration.
func (l *viperLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := l.validator.Validate(cfg); err != nil {
			return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "default configuration validation failed", err)
		}
		return cfg, nil
	}

	return l.Load(path)
}

// envVarRe matches ${VAR_NAME} placeholders.
var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables leave the placeholder unchanged so validation can flag it.
func interpolateString(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}

// applyInterpolation expands environment variable placeholders in every
// string field that commonly carries secrets or host-specific paths.
func applyInterpolation(cfg *Config) {
	cfg.Core.HomeDir = interpolateString(cfg.Core.HomeDir)
	cfg.Core.DataDir = interpolateString(cfg.Core.DataDir)

	cfg.Server.Address = interpolateString(cfg.Server.Address)

	cfg.Neo4j.URI = interpolateString(cfg.Neo4j.URI)
	cfg.Neo4j.Username = interpolateString(cfg.Neo4j.Username)
	cfg.Neo4j.Password = interpolateString(cfg.Neo4j.Password)
	cfg.Neo4j.Database = interpolateString(cfg.Neo4j.Database)

	cfg.ETA.SamplesPath = interpolateString(cfg.ETA.SamplesPath)

	cfg.Geocode.BaseURL = interpolateString(cfg.Geocode.BaseURL)
	cfg.Geocode.UserAgent = interpolateString(cfg.Geocode.UserAgent)

	cfg.Twilio.AccountSID = interpolateString(cfg.Twilio.AccountSID)
	cfg.Twilio.AuthToken = interpolateString(cfg.Twilio.AuthToken)
	cfg.Twilio.FromNumber = interpolateString(cfg.Twilio.FromNumber)
	cfg.Twilio.BaseURL = interpolateString(cfg.Twilio.BaseURL)

	cfg.Logging.Level = interpolateString(cfg.Logging.Level)
	cfg.Logging.Format = interpolateString(cfg.Logging.Format)

	cfg.Tracing.Endpoint = interpolateString(cfg.Tracing.Endpoint)
}
