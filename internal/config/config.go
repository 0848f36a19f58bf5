// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backend names accepted by STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Feed backend names accepted by FEED_BACKEND.
const (
	FeedMemory = "memory"
	FeedMongo  = "mongo"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`

	StoreBackend   string `mapstructure:"STORE_BACKEND"`
	StoreFilePath  string `mapstructure:"STORE_FILE_PATH"`
	StoreNamespace string `mapstructure:"STORE_NAMESPACE"`
	SQLitePath     string `mapstructure:"SQLITE_PATH"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	FeedBackend  string `mapstructure:"FEED_BACKEND"`
	MongoURL     string `mapstructure:"MONGO_URL"`
	MongoDB      string `mapstructure:"MONGO_DB"`
	CreatorsFile string `mapstructure:"CREATORS_FILE"`

	RemoteBaseURL        string `mapstructure:"REMOTE_BASE_URL"`
	RemoteTimeoutSeconds int    `mapstructure:"REMOTE_TIMEOUT_SECONDS"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A local .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)

	viper.SetDefault("STORE_BACKEND", StoreFile)
	viper.SetDefault("STORE_FILE_PATH", "data/local-store.json")
	viper.SetDefault("STORE_NAMESPACE", "scribble:local")
	viper.SetDefault("SQLITE_PATH", "data/local-store.db")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "scribble")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("FEED_BACKEND", FeedMemory)
	viper.SetDefault("MONGO_URL", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "scribble")
	viper.SetDefault("CREATORS_FILE", "data/top-creators.json")

	viper.SetDefault("REMOTE_BASE_URL", "")
	viper.SetDefault("REMOTE_TIMEOUT_SECONDS", 5)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.FeedBackend = strings.ToLower(strings.TrimSpace(c.FeedBackend))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	if c.RemoteBaseURL == "" {
		c.RemoteBaseURL = "http://127.0.0.1:" + c.Port
	}
	c.RemoteBaseURL = strings.TrimRight(c.RemoteBaseURL, "/")
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.StoreBackend {
	case StoreMemory, StoreRedis, StorePostgres:
	case StoreFile:
		if c.StoreFilePath == "" {
			return errors.New("STORE_FILE_PATH is required for the file store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.FeedBackend {
	case FeedMemory:
	case FeedMongo:
		if c.MongoURL == "" || c.MongoDB == "" {
			return errors.New("MONGO_URL and MONGO_DB are required for the mongo feed")
		}
	default:
		return fmt.Errorf("unknown FEED_BACKEND %q", c.FeedBackend)
	}

	if c.RemoteTimeoutSeconds <= 0 {
		return errors.New("REMOTE_TIMEOUT_SECONDS must be positive")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.StoreBackend == StorePostgres && (c.DBPassword == "password" || c.DBPassword == "") {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
