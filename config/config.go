package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"kenoanalyzer/database"
	"kenoanalyzer/service"
)

// Config holds all application configuration
type Config struct {
	// Input configuration
	DataRootPath string `yaml:"data_root_path"` // Directory searched recursively for draw CSV files

	// Engine configuration
	TrialCount        int64  `yaml:"trial_count"`
	SimulationSeed    uint64 `yaml:"simulation_seed"`    // 0 seeds every stream from crypto/rand
	AggregatorWorkers int    `yaml:"aggregator_workers"` // 0 means one per CPU

	// Database configuration (optional; empty URL keeps results in memory)
	DatabaseURL  string `yaml:"database_url"`
	DatabaseName string `yaml:"database_name"`

	// Report configuration
	ReportPath   string `yaml:"report_path"`
	ChartPath    string `yaml:"chart_path"`
	DisableChart bool   `yaml:"disable_chart"` // skip the PNG chart and its \includegraphics

	LogLevel string `yaml:"log_level"`

	// Environment
	Environment string `yaml:"environment"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// PersistenceEnabled reports whether analysis runs should be stored
func (c *Config) PersistenceEnabled() bool {
	return c.DatabaseURL != ""
}

// load builds the configuration from an optional YAML file overlaid with environment variables
func load() (*Config, error) {
	config := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileConfig, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		config = fileConfig
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides fields with any environment variables that are set
func applyEnv(config *Config) error {
	setString(&config.DataRootPath, "DATA_ROOT_PATH")
	setString(&config.DatabaseURL, "DATABASE_URL")
	setString(&config.DatabaseName, "DATABASE_NAME")
	setString(&config.ReportPath, "REPORT_PATH")
	setString(&config.ChartPath, "CHART_PATH")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.Environment, "ENVIRONMENT")

	if trials := os.Getenv("TRIAL_COUNT"); trials != "" {
		parsed, err := strconv.ParseInt(strings.ReplaceAll(trials, "_", ""), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TRIAL_COUNT %q: %w", trials, err)
		}
		config.TrialCount = parsed
	}
	if seed := os.Getenv("SIMULATION_SEED"); seed != "" {
		parsed, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SIMULATION_SEED %q: %w", seed, err)
		}
		config.SimulationSeed = parsed
	}
	if disable := os.Getenv("DISABLE_CHART"); disable != "" {
		parsed, err := strconv.ParseBool(disable)
		if err != nil {
			return fmt.Errorf("invalid DISABLE_CHART %q: %w", disable, err)
		}
		config.DisableChart = parsed
	}
	if workers := os.Getenv("AGGREGATOR_WORKERS"); workers != "" {
		parsed, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid AGGREGATOR_WORKERS %q: %w", workers, err)
		}
		config.AggregatorWorkers = parsed
	}
	return nil
}

func setString(field *string, key string) {
	if value := os.Getenv(key); value != "" {
		*field = value
	}
}

func (c *Config) applyDefaults() {
	if c.TrialCount == 0 {
		c.TrialCount = service.DefaultTrialCount
	}
	if c.ReportPath == "" {
		c.ReportPath = "frequencies.tex"
	}
	if c.ChartPath == "" {
		c.ChartPath = "frequencies.png"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Environment != "test" && c.DataRootPath == "" {
		return fmt.Errorf("DATA_ROOT_PATH is required")
	}
	if c.TrialCount <= 0 {
		return fmt.Errorf("trial count must be positive, got %d", c.TrialCount)
	}
	if c.AggregatorWorkers < 0 {
		return fmt.Errorf("aggregator workers cannot be negative, got %d", c.AggregatorWorkers)
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be blank when provided")
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:    "test",
		TrialCount:     10_000,
		SimulationSeed: 1,
		ReportPath:     "frequencies.tex",
		ChartPath:      "frequencies.png",
		LogLevel:       "debug",
	}
}
