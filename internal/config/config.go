// Package config provides YAML-based configuration management for the sentiment API.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	// HTTP server configuration
	Server ServerConfig `yaml:"server"`

	// Batch upload and processing configuration
	Batch BatchConfig `yaml:"batch"`

	// Prediction model client configuration
	Model ModelConfig `yaml:"model"`

	// Prediction log storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Advanced options
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                   int      `yaml:"port"`
	BindAddress            string   `yaml:"bindAddress"`
	EnableCORS             bool     `yaml:"enableCors"`
	AllowOrigins           []string `yaml:"allowOrigins"`
	CORSMaxAgeSeconds      int      `yaml:"corsMaxAgeSeconds"`
	ReadTimeoutSeconds     int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds    int      `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds     int      `yaml:"idleTimeoutSeconds"`
	ShutdownTimeoutSeconds int      `yaml:"shutdownTimeoutSeconds"`
	EnableCompression      bool     `yaml:"enableCompression"`
	CompressionLevel       int      `yaml:"compressionLevel"`
}

// BatchConfig contains upload limits and batch processing settings
type BatchConfig struct {
	MaxFileSize            string   `yaml:"maxFileSize"`
	MaxRequestSize         string   `yaml:"maxRequestSize"`
	MinTextLength          int      `yaml:"minTextLength"`
	Extensions             []string `yaml:"extensions"`
	ContentTypes           []string `yaml:"contentTypes"`
	EnforceContentType     bool     `yaml:"enforceContentType"`
	Workers                int      `yaml:"workers"`
	ItemTimeoutSeconds     int      `yaml:"itemTimeoutSeconds"`
	JobRetentionMinutes    int      `yaml:"jobRetentionMinutes"`
	CleanupIntervalMinutes int      `yaml:"cleanupIntervalMinutes"`
}

// ModelConfig contains settings for the remote prediction model
type ModelConfig struct {
	URL               string  `yaml:"url"`
	PredictPath       string  `yaml:"predictPath"`
	HealthPath        string  `yaml:"healthPath"`
	TimeoutSeconds    int     `yaml:"timeoutSeconds"`
	MaxRetries        int     `yaml:"maxRetries"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// StorageConfig contains prediction log storage settings
type StorageConfig struct {
	Driver            string `yaml:"driver"` // duckdb, postgres or memory
	DataDirectory     string `yaml:"dataDirectory"`
	DuckDBPath        string `yaml:"duckdbPath"`
	DuckDBThreads     int    `yaml:"duckdbThreads"`
	DuckDBMemoryLimit string `yaml:"duckdbMemoryLimit"`
	PostgresDSN       string `yaml:"postgresDsn"`
}

// AdvancedConfig contains logging and tuning options
type AdvancedConfig struct {
	LogLevel             string `yaml:"logLevel"`
	LogFormat            string `yaml:"logFormat"` // json or text
	EnableRequestLogging bool   `yaml:"enableRequestLogging"`
}

// Storage drivers
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        8080,
			BindAddress: "0.0.0.0",
			EnableCORS:  true,
			AllowOrigins: []string{
				"https://ml-punto-tech.github.io",
				"https://sentimient-walo.vercel.app",
			},
			CORSMaxAgeSeconds:      3600,
			ReadTimeoutSeconds:     30,
			WriteTimeoutSeconds:    120,
			IdleTimeoutSeconds:     120,
			ShutdownTimeoutSeconds: 15,
			EnableCompression:      true,
			CompressionLevel:       5,
		},
		Batch: BatchConfig{
			MaxFileSize:    "10MB",
			MaxRequestSize: "10MB",
			MinTextLength:  10,
			Extensions:     []string{".csv"},
			ContentTypes: []string{
				"text/csv",
				"application/csv",
				"text/comma-separated-values",
				"application/vnd.ms-excel",
				"application/octet-stream",
			},
			EnforceContentType:     false,
			Workers:                4,
			ItemTimeoutSeconds:     10,
			JobRetentionMinutes:    30,
			CleanupIntervalMinutes: 5,
		},
		Model: ModelConfig{
			URL:               "http://localhost:8000",
			PredictPath:       "/api_sentimiento",
			HealthPath:        "/",
			TimeoutSeconds:    10,
			MaxRetries:        1,
			RequestsPerSecond: 0,
			Burst:             1,
		},
		Storage: StorageConfig{
			Driver:            DriverDuckDB,
			DataDirectory:     "./data",
			DuckDBPath:        "./data/sentiment.duckdb",
			DuckDBThreads:     2,
			DuckDBMemoryLimit: "512MB",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFormat:            "json",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// A missing file is created with the default configuration.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		cfg.applyEnvironmentOverrides()
		cfg.resolvePaths(filepath.Dir(configPath))
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so that keys missing in the file keep sane values
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.resolvePaths(filepath.Dir(configPath))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Sentiment API configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if url := os.Getenv("MODEL_API_URL"); url != "" {
		c.Model.URL = url
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		c.Storage.Driver = strings.ToLower(driver)
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Storage.PostgresDSN = dsn
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}
	if path := os.Getenv("DUCKDB_PATH"); path != "" {
		c.Storage.DuckDBPath = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if c.Storage.DuckDBPath != "" && !filepath.IsAbs(c.Storage.DuckDBPath) {
		c.Storage.DuckDBPath = filepath.Join(configDir, c.Storage.DuckDBPath)
	}
}

// Validate checks that the configuration is internally consistent
func (c *AppConfig) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	fileSize, err := ParseSize(c.Batch.MaxFileSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("batch.maxFileSize: %w", err))
	}
	requestSize, err := ParseSize(c.Batch.MaxRequestSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("batch.maxRequestSize: %w", err))
	}
	if fileSize > 0 && requestSize > 0 && requestSize < fileSize {
		errs = append(errs, errors.New("batch.maxRequestSize must not be smaller than batch.maxFileSize"))
	}
	if c.Batch.MinTextLength < 1 {
		errs = append(errs, fmt.Errorf("batch.minTextLength must be positive: %d", c.Batch.MinTextLength))
	}
	if len(c.Batch.Extensions) == 0 {
		errs = append(errs, errors.New("batch.extensions must not be empty"))
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("batch.workers must be positive: %d", c.Batch.Workers))
	}
	if c.Batch.ItemTimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("batch.itemTimeoutSeconds must be positive: %d", c.Batch.ItemTimeoutSeconds))
	}
	if c.Batch.JobRetentionMinutes < 1 || c.Batch.CleanupIntervalMinutes < 1 {
		errs = append(errs, errors.New("batch.jobRetentionMinutes and batch.cleanupIntervalMinutes must be positive"))
	}

	if c.Model.URL == "" {
		errs = append(errs, errors.New("model.url is required"))
	}
	if c.Model.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("model.maxRetries must not be negative: %d", c.Model.MaxRetries))
	}

	switch c.Storage.Driver {
	case DriverDuckDB:
		if c.Storage.DuckDBPath == "" {
			errs = append(errs, errors.New("storage.duckdbPath is required for the duckdb driver"))
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgresDsn is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver: %q", c.Storage.Driver))
	}

	return errors.Join(errs...)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// MaxFileSizeBytes returns the parsed maximum upload size
func (c *AppConfig) MaxFileSizeBytes() int64 {
	n, _ := ParseSize(c.Batch.MaxFileSize)
	return n
}

// MaxRequestSizeBytes returns the parsed maximum request body size
func (c *AppConfig) MaxRequestSizeBytes() int64 {
	n, _ := ParseSize(c.Batch.MaxRequestSize)
	return n
}

// ItemTimeout returns the per-prediction timeout used in batches
func (c *AppConfig) ItemTimeout() time.Duration {
	return time.Duration(c.Batch.ItemTimeoutSeconds) * time.Second
}

// ModelTimeout returns the HTTP timeout of the model client
func (c *AppConfig) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{c.Storage.DataDirectory}
	if c.Storage.Driver == DriverDuckDB {
		dirs = append(dirs, filepath.Dir(c.Storage.DuckDBPath))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize parses human-readable sizes such as "10MB", "512K" or "2G".
// Units are binary (1K = 1024 bytes).
func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, errors.New("empty size")
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	mult, ok := sizeUnits[strings.TrimSpace(s[i:])]
	if !ok {
		return 0, fmt.Errorf("invalid size unit in %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive: %q", s)
	}
	if n > math.MaxInt64/mult {
		return 0, fmt.Errorf("size overflows int64: %q", s)
	}
	return n * mult, nil
}
