package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret          string `yaml:"secret" env:"JWT_SECRET"`
		TokenTTL        string `yaml:"token_ttl" env:"JWT_TOKEN_TTL"`
		Issuer          string `yaml:"issuer" env:"JWT_ISSUER"`
		TrackRevocation bool   `yaml:"track_revocation" env:"JWT_TRACK_REVOCATION"`
	} `yaml:"jwt"`

	Redis struct {
		Enabled   bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		Addr      string `yaml:"addr" env:"REDIS_ADDR"`
		Password  string `yaml:"password" env:"REDIS_PASSWORD"`
		DB        int    `yaml:"db" env:"REDIS_DB"`
		ReportTTL string `yaml:"report_ttl" env:"REDIS_REPORT_TTL"`
	} `yaml:"redis"`

	GTO struct {
		// MaxCourse is the highest course number scanned when resolving an institute's groups.
		MaxCourse int `yaml:"max_course" env:"GTO_MAX_COURSE"`
	} `yaml:"gto"`

	Results struct {
		// Kinds lists the result kinds exposed over HTTP besides GTO (standard, theory).
		Kinds []string `yaml:"kinds" env:"RESULTS_KINDS"`
	} `yaml:"results"`

	Admin struct {
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
		FullName string `yaml:"full_name" env:"ADMIN_FULL_NAME"`
	} `yaml:"admin"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional, env vars alone are enough in containers
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = []string{"*"}

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "gto"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// 60*60*60 seconds
	config.JWT.TokenTTL = "60h"
	config.JWT.Issuer = "gtostat"
	config.JWT.TrackRevocation = true

	config.Redis.Addr = "localhost:6379"
	config.Redis.ReportTTL = "5m"

	config.GTO.MaxCourse = 6
	config.Results.Kinds = []string{"standard", "theory"}

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	ttl, err := time.ParseDuration(config.JWT.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid JWT token ttl format: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("JWT token ttl must be positive")
	}

	if config.Redis.Enabled {
		if _, err := time.ParseDuration(config.Redis.ReportTTL); err != nil {
			return fmt.Errorf("invalid redis report ttl format: %w", err)
		}
	}

	if config.GTO.MaxCourse < 1 {
		return fmt.Errorf("gto max_course must be at least 1")
	}

	for _, kind := range config.Results.Kinds {
		if kind != "standard" && kind != "theory" {
			return fmt.Errorf("unknown result kind %q", kind)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
