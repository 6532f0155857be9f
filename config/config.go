// Package config loads the service configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"diabetescheck/logger"
	"diabetescheck/ml"
)

// EnvPrefix prefixes every environment override, e.g. DIABETESCHECK_HTTP_PORT.
const EnvPrefix = "DIABETESCHECK"

const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"
)

type Config struct {
	Http      HTTPConfig      `yaml:"http"`
	Log       logger.Config   `yaml:"log"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Cache     CacheConfig     `yaml:"cache"`
	Database  DatabaseConfig  `yaml:"database"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      int           `yaml:"rate_limit"`
	RateWindow     time.Duration `yaml:"rate_window"`
}

// ArtifactConfig locates one serialized artifact.
type ArtifactConfig struct {
	// Type is required for files; stored artifacts carry their own kind.
	Type string `yaml:"type"`
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

type ArtifactsConfig struct {
	// Source is "file" (read Path) or "sqlite" (read Name from the database).
	Source     string         `yaml:"source"`
	Scaler     ArtifactConfig `yaml:"scaler"`
	Classifier ArtifactConfig `yaml:"classifier"`
	ONNX       ONNXConfig     `yaml:"onnx"`
}

type ONNXConfig struct {
	LibraryPath string `yaml:"library_path"`
	InputName   string `yaml:"input_name"`
	OutputName  string `yaml:"output_name"`
}

type CacheConfig struct {
	// Size is the number of cached predictions; 0 disables the cache.
	Size int `yaml:"size"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// envOverrides lists the fields settable from the environment. envconfig only
// assigns variables that are present, so unset ones keep their YAML values.
type envOverrides struct {
	HTTPPort           *int           `envconfig:"HTTP_PORT"`
	HTTPTimeout        *time.Duration `envconfig:"HTTP_TIMEOUT"`
	HTTPAllowedOrigins []string       `envconfig:"HTTP_ALLOWED_ORIGINS"`
	HTTPRateLimit      *int           `envconfig:"HTTP_RATE_LIMIT"`
	LogLevel           string         `envconfig:"LOG_LEVEL"`
	LogFormat          string         `envconfig:"LOG_FORMAT"`
	LogFile            string         `envconfig:"LOG_FILE"`
	ArtifactsSource    string         `envconfig:"ARTIFACTS_SOURCE"`
	ScalerType         string         `envconfig:"SCALER_TYPE"`
	ScalerPath         string         `envconfig:"SCALER_PATH"`
	ClassifierType     string         `envconfig:"CLASSIFIER_TYPE"`
	ClassifierPath     string         `envconfig:"CLASSIFIER_PATH"`
	ONNXLibraryPath    string         `envconfig:"ONNX_LIBRARY_PATH"`
	CacheSize          *int           `envconfig:"CACHE_SIZE"`
	DatabasePath       string         `envconfig:"DATABASE_PATH"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	config := defaults()
	config.applyFileTypes()
	return config
}

// defaults leaves artifact types unset; applyFileTypes fills them once the source is known.
func defaults() Config {
	onnx := ml.DefaultONNXOptions()
	return Config{
		Http: HTTPConfig{
			Port:           8080,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
			RateLimit:      100,
			RateWindow:     time.Minute,
		},
		Log: logger.Config{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Artifacts: ArtifactsConfig{
			Source:     SourceFile,
			Scaler:     ArtifactConfig{Path: "artifacts/scaler.json", Name: "scaler"},
			Classifier: ArtifactConfig{Path: "artifacts/model.json", Name: "model"},
			ONNX:       ONNXConfig{InputName: onnx.InputName, OutputName: onnx.OutputName},
		},
		Cache:    CacheConfig{Size: 1024},
		Database: DatabaseConfig{Path: "diabetescheck.db"},
	}
}

// Load reads the YAML file at path over the defaults, then a .env file if one
// exists in the working directory, then DIABETESCHECK_* environment variables.
// A missing file at path is not an error when path is empty.
func Load(path string) (*Config, error) {
	config := defaults()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&config); err != nil {
		return nil, err
	}
	config.applyFileTypes()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyEnv(config *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if env.HTTPPort != nil {
		config.Http.Port = *env.HTTPPort
	}
	if env.HTTPTimeout != nil {
		config.Http.Timeout = *env.HTTPTimeout
	}
	if len(env.HTTPAllowedOrigins) > 0 {
		config.Http.AllowedOrigins = env.HTTPAllowedOrigins
	}
	if env.HTTPRateLimit != nil {
		config.Http.RateLimit = *env.HTTPRateLimit
	}
	setIfNotEmpty(&config.Log.Level, env.LogLevel)
	setIfNotEmpty(&config.Log.Format, env.LogFormat)
	setIfNotEmpty(&config.Log.File, env.LogFile)
	setIfNotEmpty(&config.Artifacts.Source, env.ArtifactsSource)
	setIfNotEmpty(&config.Artifacts.Scaler.Type, env.ScalerType)
	setIfNotEmpty(&config.Artifacts.Scaler.Path, env.ScalerPath)
	setIfNotEmpty(&config.Artifacts.Classifier.Type, env.ClassifierType)
	setIfNotEmpty(&config.Artifacts.Classifier.Path, env.ClassifierPath)
	setIfNotEmpty(&config.Artifacts.ONNX.LibraryPath, env.ONNXLibraryPath)
	if env.CacheSize != nil {
		config.Cache.Size = *env.CacheSize
	}
	setIfNotEmpty(&config.Database.Path, env.DatabasePath)
	return nil
}

// applyFileTypes assumes the standard scaler and linear classifier for files
// whose type is not configured. Stored artifacts carry their own kind, so an
// unset type stays unset for the sqlite source.
func (c *Config) applyFileTypes() {
	if c.Artifacts.Source != SourceFile {
		return
	}
	if c.Artifacts.Scaler.Type == "" {
		c.Artifacts.Scaler.Type = ml.ScalerStandard
	}
	if c.Artifacts.Classifier.Type == "" {
		c.Artifacts.Classifier.Type = ml.ClassifierLinear
	}
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Http.RateLimit < 0 {
		return errors.New("http.rate_limit must not be negative")
	}
	if c.Cache.Size < 0 {
		return errors.New("cache.size must not be negative")
	}
	switch c.Artifacts.Source {
	case SourceFile:
		if c.Artifacts.Scaler.Path == "" || c.Artifacts.Classifier.Path == "" {
			return errors.New("artifacts.scaler.path and artifacts.classifier.path are required")
		}
		if c.Artifacts.Scaler.Type == "" || c.Artifacts.Classifier.Type == "" {
			return errors.New("artifacts.scaler.type and artifacts.classifier.type are required")
		}
	case SourceSQLite:
		if c.Artifacts.Scaler.Name == "" || c.Artifacts.Classifier.Name == "" {
			return errors.New("artifacts.scaler.name and artifacts.classifier.name are required")
		}
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite artifact source")
		}
	default:
		return fmt.Errorf("unknown artifacts.source %q", c.Artifacts.Source)
	}
	return nil
}

// ONNXOptions converts the onnx section for the ml package.
func (c ArtifactsConfig) ONNXOptions() ml.ONNXOptions {
	return ml.ONNXOptions{
		LibraryPath: c.ONNX.LibraryPath,
		InputName:   c.ONNX.InputName,
		OutputName:  c.ONNX.OutputName,
	}
}
