package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, NewValidator().Validate(cfg))

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, 25, cfg.Neo4j.MaxConnections)
	assert.Equal(t, float64(30), cfg.ETA.FallbackKmh)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadParsesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
core:
  timeout: 2m
server:
  address: ":9090"
neo4j:
  uri: bolt://graph.internal:7687
  username: svc
  password: secret
  max_connections: 10
  connection_timeout: 15s
eta:
  min_samples: 8
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "bolt://graph.internal:7687", cfg.Neo4j.URI)
	assert.Equal(t, "svc", cfg.Neo4j.Username)
	assert.Equal(t, 10, cfg.Neo4j.MaxConnections)
	assert.Equal(t, 15*time.Second, cfg.Neo4j.ConnectionTimeout)
	assert.Equal(t, 8, cfg.ETA.MinSamples)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadInterpolatesEnvVars(t *testing.T) {
	t.Setenv("TEST_GRAPH_PASSWORD", "s3cr3t")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
core:
  timeout: 1m
neo4j:
  uri: bolt://localhost:7687
  username: neo4j
  password: ${TEST_GRAPH_PASSWORD}
  max_connections: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.Neo4j.Password)
}

func TestLoadUnsetEnvVarKeepsPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
core:
  timeout: 1m
neo4j:
  uri: bolt://localhost:7687
  password: ${DEFINITELY_NOT_SET_9Z}
  max_connections: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_NOT_SET_9Z}", cfg.Neo4j.Password)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := NewLoader(NewValidator()).Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var serr *types.StringingError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, types.CONFIG_NOT_FOUND, serr.Code)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("core: [not: closed"), 0o644))

	_, err := NewLoader(NewValidator()).Load(path)
	require.Error(t, err)

	var serr *types.StringingError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, types.CONFIG_LOAD_FAILED, serr.Code)
}

func TestLoadWithDefaultsFallsBackWhenMissing(t *testing.T) {
	cfg, err := NewLoader(NewValidator()).LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestValidateRejectsBadValues(t *testing.T) {
	validator := NewValidator()

	cfg := DefaultConfig()
	cfg.Neo4j.MaxConnections = -1
	assert.Error(t, validator.Validate(cfg))

	cfg = DefaultConfig()
	cfg.Neo4j.URI = ""
	assert.Error(t, validator.Validate(cfg))

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, validator.Validate(cfg))

	cfg = DefaultConfig()
	cfg.Core.Timeout = 0
	assert.Error(t, validator.Validate(cfg))

	assert.Error(t, validator.Validate(nil))
}
