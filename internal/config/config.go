package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"wishlist-extractor/internal/types"
)

const (
	configPathEnv         = "WISHLIST_EXTRACTOR_CONFIG"
	renderProxyURLEnv     = "RENDER_PROXY_URL"
	renderProxyAPIKeyEnv  = "RENDER_PROXY_API_KEY"
	unlockerURLEnv        = "UNLOCKER_URL"
	unlockerAPIKeyEnv     = "UNLOCKER_API_KEY"
	unlockerZoneEnv       = "UNLOCKER_ZONE"
	browserEnabledEnv     = "BROWSER_ENABLED"
	storeDriverEnv        = "STORE_DRIVER"
	storeDSNEnv           = "STORE_DSN"
	apiPortEnv            = "API_PORT"
	logLevelEnv           = "LOG_LEVEL"
	pipelineTimeoutEnv    = "PIPELINE_TIMEOUT"
	timestampFormat       = "2006-01-02 15:04:05.000"
	defaultPort           = "8080"
	defaultStoreDriver    = "sqlite"
	defaultStoreDSN       = "wishlist.db"
	defaultShutdownPeriod = 15 * time.Second
)

// Config holds every setting the binaries need.
type Config struct {
	Extractor *types.Config `yaml:"extractor"`
	Store     StoreConfig   `yaml:"store"`
	Server    ServerConfig  `yaml:"server"`
	Logging   LoggingConfig `yaml:"logging"`
}

// StoreConfig selects the list store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ServerConfig describes the HTTP API listener.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Addr is the listen address for the configured port.
func (s ServerConfig) Addr() string {
	return ":" + strings.TrimPrefix(s.Port, ":")
}

// LoggingConfig controls logger level and output format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file named by WISHLIST_EXTRACTOR_CONFIG (if set) over
// the defaults and then applies environment overrides.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		// Decoding onto the defaults keeps every key the file leaves out.
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if cfg.Extractor == nil {
			cfg.Extractor = types.DefaultConfig()
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Extractor: types.DefaultConfig(),
		Store: StoreConfig{
			Driver: defaultStoreDriver,
			DSN:    defaultStoreDSN,
		},
		Server: ServerConfig{
			Port:            defaultPort,
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: defaultShutdownPeriod,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(renderProxyURLEnv); v != "" {
		c.Extractor.RenderProxy.BaseURL = v
	}
	if v := os.Getenv(renderProxyAPIKeyEnv); v != "" {
		c.Extractor.RenderProxy.APIKey = v
	}

	if v := os.Getenv(unlockerURLEnv); v != "" {
		c.Extractor.Unlocker.BaseURL = v
	}
	if v := os.Getenv(unlockerAPIKeyEnv); v != "" {
		c.Extractor.Unlocker.APIKey = v
	}
	if v := os.Getenv(unlockerZoneEnv); v != "" {
		c.Extractor.Unlocker.Zone = v
	}

	if v := os.Getenv(browserEnabledEnv); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", browserEnabledEnv, err)
		}
		c.Extractor.UseHeadlessBrowser = enabled
	}

	if v := os.Getenv(pipelineTimeoutEnv); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", pipelineTimeoutEnv, err)
		}
		c.Extractor.PipelineTimeout = d
	}

	if v := os.Getenv(storeDriverEnv); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv(storeDSNEnv); v != "" {
		c.Store.DSN = v
	}

	if v := os.Getenv(apiPortEnv); v != "" {
		c.Server.Port = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// NewLogger builds the process logger. verbose raises the level to debug
// unless a level was set explicitly through LOG_LEVEL.
func NewLogger(cfg LoggingConfig, verbose bool) *logrus.Logger {
	logger := logrus.New()

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose && os.Getenv(logLevelEnv) == "" && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	return logger
}
