package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                  "development",
		Port:                 "8080",
		JWTSecret:            "secure-secret-at-least-32-chars-long",
		StoreBackend:         StoreMemory,
		FeedBackend:          FeedMemory,
		RemoteTimeoutSeconds: 5,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid defaults", func(_ *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"unknown store backend", func(c *Config) { c.StoreBackend = "floppy" }, true},
		{"file store without path", func(c *Config) { c.StoreBackend = StoreFile }, true},
		{"file store with path", func(c *Config) { c.StoreBackend = StoreFile; c.StoreFilePath = "x.json" }, false},
		{"sqlite store without path", func(c *Config) { c.StoreBackend = StoreSQLite }, true},
		{"mongo feed without url", func(c *Config) { c.FeedBackend = FeedMongo }, true},
		{"mongo feed with url", func(c *Config) { c.FeedBackend = FeedMongo; c.MongoURL = "mongodb://x"; c.MongoDB = "db" }, false},
		{"zero remote timeout", func(c *Config) { c.RemoteTimeoutSeconds = 0 }, true},
		{"production default secret", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
		{"production short secret", func(c *Config) { c.Env = "prod"; c.JWTSecret = "short" }, true},
		{"production weak db password", func(c *Config) {
			c.Env = "production"
			c.StoreBackend = StorePostgres
			c.DBPassword = "password"
		}, true},
		{"production strong config", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_BACKEND", "  MEMORY ")
	t.Setenv("PORT", "9001")
	t.Setenv("REMOTE_BASE_URL", "http://feed.local/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, c.StoreBackend)
	assert.Equal(t, "9001", c.Port)
	assert.Equal(t, "http://feed.local", c.RemoteBaseURL)
	assert.Equal(t, FeedMemory, c.FeedBackend)
}

func TestLoadConfig_RemoteBaseURLDefaultsToSelf(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("PORT", "9002")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9002", c.RemoteBaseURL)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	defer viper.Reset()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CREATORS_FILE=from-dotenv.json\nPORT=1111\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(func() { _ = os.Unsetenv("CREATORS_FILE") })

	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("PORT", "9003")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", c.CreatorsFile)
	assert.Equal(t, "9003", c.Port, "existing environment wins over .env")
}
