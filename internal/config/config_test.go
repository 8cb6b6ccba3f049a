package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishlist-extractor/internal/types"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, renderProxyURLEnv, renderProxyAPIKeyEnv, unlockerURLEnv,
		unlockerAPIKeyEnv, unlockerZoneEnv, browserEnabledEnv, storeDriverEnv,
		storeDSNEnv, apiPortEnv, logLevelEnv, pipelineTimeoutEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg.Extractor)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Extractor.RenderProxy.Configured())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
extractor:
  maxRetries: 5
  pipelineTimeout: 45s
  minBodyBytes:
    target_registry: 4000
  renderProxy:
    baseUrl: https://render.example/api
    apiKey: file-key
store:
  driver: postgres
  dsn: postgres://localhost/lists
server:
  port: "9090"
`), 0o644))
	t.Setenv(configPathEnv, path)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Extractor.MaxRetries)
	assert.Equal(t, 45*time.Second, cfg.Extractor.PipelineTimeout)
	assert.Equal(t, 4000, cfg.Extractor.MinBodyBytes[types.TargetRegistry])
	assert.Equal(t, 20_000, cfg.Extractor.MinBodyBytes[types.AmazonWishlist], "keys absent from the file keep their defaults")
	assert.Equal(t, 60*time.Second, cfg.Extractor.RenderProxy.Timeout)
	assert.True(t, cfg.Extractor.RenderProxy.Configured())
	assert.Equal(t, 30*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, ":9090", cfg.Server.Addr())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o644))
	t.Setenv(configPathEnv, path)
	t.Setenv(apiPortEnv, "7070")
	t.Setenv(unlockerURLEnv, "https://unlock.example/request")
	t.Setenv(unlockerAPIKeyEnv, "secret")
	t.Setenv(unlockerZoneEnv, "web_unlocker1")
	t.Setenv(browserEnabledEnv, "true")
	t.Setenv(pipelineTimeoutEnv, "2m")
	t.Setenv(storeDSNEnv, "/tmp/lists.db")
	t.Setenv(logLevelEnv, "debug")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr())
	assert.Equal(t, types.ProviderConfig{
		BaseURL: "https://unlock.example/request",
		APIKey:  "secret",
		Zone:    "web_unlocker1",
		Timeout: 60 * time.Second,
	}, cfg.Extractor.Unlocker)
	assert.True(t, cfg.Extractor.UseHeadlessBrowser)
	assert.Equal(t, 2*time.Minute, cfg.Extractor.PipelineTimeout)
	assert.Equal(t, "/tmp/lists.db", cfg.Store.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("extractor: [not, a, map"), 0o644))
		t.Setenv(configPathEnv, path)
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(pipelineTimeoutEnv, "soon")
		_, err := Load()
		assert.ErrorContains(t, err, pipelineTimeoutEnv)
	})

	t.Run("bad bool", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(browserEnabledEnv, "maybe")
		_, err := Load()
		assert.ErrorContains(t, err, browserEnabledEnv)
	})
}

func TestNewLogger(t *testing.T) {
	clearEnv(t)

	logger := NewLogger(LoggingConfig{Level: "warn"}, false)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger = NewLogger(LoggingConfig{Level: "info", Format: "json"}, true)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = NewLogger(LoggingConfig{Level: "nonsense"}, false)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	t.Setenv(logLevelEnv, "error")
	logger = NewLogger(LoggingConfig{Level: "error"}, true)
	assert.Equal(t, logrus.ErrorLevel, logger.GetLevel())
}
