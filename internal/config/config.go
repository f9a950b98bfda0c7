// Package config loads the coordinator process's ambient configuration
// (server address, logging, Redis, Elasticsearch, MinIO, JWT) from a YAML
// file and environment variables, via Viper. This is distinct from
// domain.Config, the per-run crawl configuration mutated through
// /configure — this package configures the *process*, domain.Config
// configures a *run*.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/crawlctl/coordinator/internal/blob"
	"github.com/crawlctl/coordinator/internal/logger"
	"github.com/crawlctl/coordinator/internal/store"
)

// Server-default constants.
const (
	DefaultServerAddress     = ":8080"
	DefaultServerReadTimeout = 30 * time.Second
	DefaultServerWriteTimeout = 30 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
	DefaultMaintenanceSpec    = "@every 5m"
)

// ServerConfig holds the HTTP server's own knobs.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// AuthConfig holds operator JWT bearer-auth configuration.
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwtSecret"`
}

// Config is the coordinator process's ambient configuration.
type Config struct {
	Environment     string           `yaml:"environment"`
	Logger          logger.Config    `yaml:"logger"`
	Server          ServerConfig     `yaml:"server"`
	Auth            AuthConfig       `yaml:"auth"`
	Redis           store.Config     `yaml:"redis"`
	Elasticsearch   ElasticsearchConfig `yaml:"elasticsearch"`
	Minio           blob.Config      `yaml:"minio"`
	MaintenanceSpec string           `yaml:"maintenanceSpec"`
}

// ElasticsearchConfig holds the page-metadata store's connection settings.
type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses"`
	Index     string   `yaml:"index"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

// Load reads configuration from cfgFile (if non-empty), the environment,
// and defaults. Environment variables win over the file, and the file wins
// over defaults. Command-line flags are not consulted here.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("server.address", DefaultServerAddress)
	v.SetDefault("server.readTimeout", DefaultServerReadTimeout)
	v.SetDefault("server.writeTimeout", DefaultServerWriteTimeout)
	v.SetDefault("server.idleTimeout", DefaultServerIdleTimeout)

	v.SetDefault("auth.enabled", false)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.index", "crawl-pages")

	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.bucket", "crawl-content")
	v.SetDefault("minio.useSSL", false)

	v.SetDefault("maintenanceSpec", DefaultMaintenanceSpec)
}

func bindEnvVars(v *viper.Viper) error {
	binds := map[string]string{
		"environment":           "APP_ENV",
		"logger.level":          "LOG_LEVEL",
		"logger.encoding":       "LOG_FORMAT",
		"server.address":        "SERVER_ADDRESS",
		"auth.enabled":          "AUTH_ENABLED",
		"auth.jwtSecret":        "AUTH_JWT_SECRET",
		"redis.address":         "REDIS_ADDRESS",
		"redis.password":        "REDIS_PASSWORD",
		"redis.db":              "REDIS_DB",
		"elasticsearch.addresses": "ELASTICSEARCH_ADDRESSES",
		"elasticsearch.index":   "ELASTICSEARCH_INDEX",
		"minio.endpoint":        "MINIO_ENDPOINT",
		"minio.accessKey":       "MINIO_ACCESS_KEY",
		"minio.secretKey":       "MINIO_SECRET_KEY",
		"minio.bucket":          "MINIO_BUCKET",
	}
	for key, env := range binds {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}
