package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_TIMEOUT", "5s")
	t.Setenv("MAX_UPLOAD_MB", "12")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openai:\n  model: gpt-4o-mini\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, int64(12), cfg.S3.MaxUploadMB)
	assert.Equal(t, int64(12*1024*1024), cfg.MaxUploadBytes())
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "digital_library", cfg.Store.DBName)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_MongoRefusesDefaultSecret(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv(ConfigPathEnvVar, writeEmptyConfig(t))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"memory defaults", func(c *Config) { c.Store.Backend = BackendMemory }, ""},
		{"mongo with secret", func(c *Config) { c.Auth.JWTSecret = "s3cr3t" }, ""},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }, "unknown STORE_BACKEND"},
		{"empty secret", func(c *Config) { c.Store.Backend = BackendMemory; c.Auth.JWTSecret = "" }, "JWT_SECRET is required"},
		{"zero upload", func(c *Config) { c.Store.Backend = BackendMemory; c.S3.MaxUploadMB = 0 }, "MAX_UPLOAD_MB"},
		{"zero rate limit", func(c *Config) { c.Store.Backend = BackendMemory; c.Server.RateLimitRequests = 0 }, "RATE_LIMIT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvTransform_IgnoresUnknown(t *testing.T) {
	assert.Equal(t, "store.mongo_uri", envTransform("MONGODB_URI"))
	assert.Equal(t, "", envTransform("HOME"))
}

func writeEmptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))
	return path
}
