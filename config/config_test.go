package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Http.Port)
	assert.Equal(t, 30*time.Second, cfg.Http.Timeout)
	assert.Equal(t, SourceFile, cfg.Artifacts.Source)
	assert.Equal(t, "standard", cfg.Artifacts.Scaler.Type)
	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.Equal(t, "float_input", cfg.Artifacts.ONNX.InputName)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9090
  timeout: 5s
log:
  level: debug
artifacts:
  scaler:
    type: minmax
    path: /srv/Scaler.json
  classifier:
    type: decision_tree
    path: /srv/Model.json
cache:
  size: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Http.Port)
	assert.Equal(t, 5*time.Second, cfg.Http.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format, "unset keys keep defaults")
	assert.Equal(t, "minmax", cfg.Artifacts.Scaler.Type)
	assert.Equal(t, "/srv/Model.json", cfg.Artifacts.Classifier.Path)
	assert.Equal(t, 0, cfg.Cache.Size)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Http.Port)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DIABETESCHECK_HTTP_PORT", "7000")
	t.Setenv("DIABETESCHECK_HTTP_TIMEOUT", "2s")
	t.Setenv("DIABETESCHECK_CLASSIFIER_TYPE", "onnx")
	t.Setenv("DIABETESCHECK_CLASSIFIER_PATH", "/models/model.onnx")
	t.Setenv("DIABETESCHECK_CACHE_SIZE", "0")

	cfg, err := Load(writeConfig(t, "http:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Http.Port)
	assert.Equal(t, 2*time.Second, cfg.Http.Timeout)
	assert.Equal(t, "onnx", cfg.Artifacts.Classifier.Type)
	assert.Equal(t, "/models/model.onnx", cfg.Artifacts.Classifier.Path)
	assert.Equal(t, 0, cfg.Cache.Size)
}

func TestLoadSQLiteSourceKeepsStoredKinds(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
artifacts:
  source: sqlite
  scaler: {name: scaler}
  classifier: {name: tree}
`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Artifacts.Scaler.Type)
	assert.Empty(t, cfg.Artifacts.Classifier.Type)

	cfg, err = Load(writeConfig(t, `
artifacts:
  source: sqlite
  classifier: {name: tree, type: decision_tree}
`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Artifacts.Scaler.Type)
	assert.Equal(t, "decision_tree", cfg.Artifacts.Classifier.Type, "explicit types are still checked against the store")

	t.Setenv("DIABETESCHECK_ARTIFACTS_SOURCE", "sqlite")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Artifacts.Classifier.Type)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "http: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "http:\n  port: 70000\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Http.Timeout = 0 }},
		{"negative cache", func(c *Config) { c.Cache.Size = -1 }},
		{"unknown source", func(c *Config) { c.Artifacts.Source = "s3" }},
		{"missing path", func(c *Config) { c.Artifacts.Scaler.Path = "" }},
		{"missing type", func(c *Config) { c.Artifacts.Classifier.Type = "" }},
		{"sqlite without name", func(c *Config) {
			c.Artifacts.Source = SourceSQLite
			c.Artifacts.Classifier.Name = ""
		}},
		{"sqlite without database", func(c *Config) {
			c.Artifacts.Source = SourceSQLite
			c.Database.Path = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Artifacts.Source = SourceSQLite
	cfg.Artifacts.Scaler.Type = ""
	assert.NoError(t, cfg.Validate(), "stored artifacts carry their own kind")
}
