// Package config loads settings from a YAML file, a .env file and
// CAMPUSBITE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"campusbite/backend/appwrite"
	"campusbite/retry"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CAMPUSBITE_SERVER_PORT.
const EnvPrefix = "CAMPUSBITE"

// devSecret signs sessions when no secret is configured.
const devSecret = "campusbite_dev_secret_2024"

type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Appwrite AppwriteConfig `mapstructure:"appwrite"`
	Files    FilesConfig    `mapstructure:"files"`
	S3       S3Config       `mapstructure:"s3"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Local    LocalConfig    `mapstructure:"local"`
	Server   ServerConfig   `mapstructure:"server"`
}

type BackendConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | appwrite
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	LoginLimit  int           `mapstructure:"login_limit"`
	LoginWindow time.Duration `mapstructure:"login_window"`
}

type AppwriteConfig struct {
	Endpoint    string               `mapstructure:"endpoint"`
	ProjectID   string               `mapstructure:"project_id"`
	DatabaseID  string               `mapstructure:"database_id"`
	BucketID    string               `mapstructure:"bucket_id"`
	Collections appwrite.Collections `mapstructure:"collections"`
	Timeout     time.Duration        `mapstructure:"timeout"`
}

type FilesConfig struct {
	Driver         string `mapstructure:"driver"` // disk | s3
	Dir            string `mapstructure:"dir"`
	Bucket         string `mapstructure:"bucket"`
	PublicEndpoint string `mapstructure:"public_endpoint"`
}

type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	PublicURL string `mapstructure:"public_url"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

type LocalConfig struct {
	Path string `mapstructure:"path"` // session cache and preferences
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	v.SetDefault("backend.driver", "sqlite")
	v.SetDefault("sqlite.path", "campusbite.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_ttl", "720h")
	v.SetDefault("auth.login_limit", 10)
	v.SetDefault("auth.login_window", "1h")
	v.SetDefault("appwrite.endpoint", "https://cloud.appwrite.io/v1")
	v.SetDefault("appwrite.project_id", "")
	v.SetDefault("appwrite.database_id", "")
	v.SetDefault("appwrite.bucket_id", "")
	for _, c := range []string{"users", "restaurants", "foods", "orders", "deliveries", "notifications"} {
		v.SetDefault("appwrite.collections."+c, "")
	}
	v.SetDefault("appwrite.timeout", "10s")
	v.SetDefault("files.driver", "disk")
	v.SetDefault("files.dir", "uploads")
	v.SetDefault("files.bucket", "food-images")
	v.SetDefault("files.public_endpoint", "http://localhost:8080/v1")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.public_url", "")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "campusbite.notifications")
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", "2s")
	v.SetDefault("local.path", filepath.Join(home, ".campusbite", "local.yaml"))
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
}

// Load reads path, or campusbite.yaml from the working directory or
// ~/.campusbite when path is empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN could not load .env: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("campusbite")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".campusbite"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	hooks := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks driver choices and fills the development secret.
func (c *Config) Validate() error {
	switch c.Backend.Driver {
	case "sqlite":
		if c.Auth.JWTSecret == "" {
			log.Printf("WARN auth.jwt_secret is not set, using the development secret")
			c.Auth.JWTSecret = devSecret
		}
	case "appwrite":
		if c.Appwrite.ProjectID == "" || c.Appwrite.DatabaseID == "" {
			return errors.New("config: appwrite.project_id and appwrite.database_id are required")
		}
	default:
		return fmt.Errorf("config: unknown backend.driver %q", c.Backend.Driver)
	}
	switch c.Files.Driver {
	case "disk":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("config: s3.bucket is required for files.driver s3")
		}
	default:
		return fmt.Errorf("config: unknown files.driver %q", c.Files.Driver)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("config: kafka.brokers is required when kafka is enabled")
	}
	return nil
}

func (c *Config) RetryOptions() retry.Options {
	return retry.Options{MaxRetries: c.Retry.MaxRetries, BaseDelay: c.Retry.BaseDelay}
}

func (c *Config) AppwriteClientConfig() appwrite.Config {
	return appwrite.Config{
		Endpoint:    c.Appwrite.Endpoint,
		ProjectID:   c.Appwrite.ProjectID,
		DatabaseID:  c.Appwrite.DatabaseID,
		BucketID:    c.Appwrite.BucketID,
		Collections: c.Appwrite.Collections,
		Timeout:     c.Appwrite.Timeout,
	}
}
