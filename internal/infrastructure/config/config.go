package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Trendyol   TrendyolConfig
	Semantic   SemanticConfig
	Submission SubmissionConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection settings. An empty Host disables
// redis and the in-process submission guard is used instead.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TrendyolConfig holds the seller account settings.
type TrendyolConfig struct {
	APIKey          string
	APISecret       string
	SellerID        string
	BaseURL         string
	TimeoutSeconds  int
	FallbackBrandID int
}

// SemanticConfig holds the optional embedding capability settings. An
// empty APIKey disables the semantic matching tier.
type SemanticConfig struct {
	APIKey string
	Model  string
}

// SubmissionConfig holds submission tuning.
type SubmissionConfig struct {
	ListPriceMargin float64
	DefaultVATRate  int
	DefaultCurrency string
	GuardTTL        time.Duration
	PollInitial     time.Duration
	PollMaxInterval time.Duration
	PollMaxElapsed  time.Duration
	PollMaxAttempts int
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with TRENDSYNC_ prefix
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("TRENDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Trendyol: TrendyolConfig{
			APIKey:          v.GetString("trendyol.api_key"),
			APISecret:       v.GetString("trendyol.api_secret"),
			SellerID:        v.GetString("trendyol.seller_id"),
			BaseURL:         v.GetString("trendyol.base_url"),
			TimeoutSeconds:  v.GetInt("trendyol.timeout_seconds"),
			FallbackBrandID: v.GetInt("trendyol.fallback_brand_id"),
		},
		Semantic: SemanticConfig{
			APIKey: v.GetString("semantic.api_key"),
			Model:  v.GetString("semantic.model"),
		},
		Submission: SubmissionConfig{
			ListPriceMargin: v.GetFloat64("submission.list_price_margin"),
			DefaultVATRate:  v.GetInt("submission.default_vat_rate"),
			DefaultCurrency: v.GetString("submission.default_currency"),
			GuardTTL:        v.GetDuration("submission.guard_ttl"),
			PollInitial:     v.GetDuration("submission.poll_initial"),
			PollMaxInterval: v.GetDuration("submission.poll_max_interval"),
			PollMaxElapsed:  v.GetDuration("submission.poll_max_elapsed"),
			PollMaxAttempts: v.GetInt("submission.poll_max_attempts"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "trendsync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "trendsync"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "trendsync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Trendyol.TimeoutSeconds == 0 {
		cfg.Trendyol.TimeoutSeconds = 30
	}
	if cfg.Submission.DefaultVATRate == 0 {
		cfg.Submission.DefaultVATRate = 10
	}
	if cfg.Submission.DefaultCurrency == "" {
		cfg.Submission.DefaultCurrency = "TRY"
	}
	if cfg.Submission.GuardTTL == 0 {
		cfg.Submission.GuardTTL = 30 * time.Minute
	}
	if cfg.Submission.PollInitial == 0 {
		cfg.Submission.PollInitial = 2 * time.Second
	}
	if cfg.Submission.PollMaxInterval == 0 {
		cfg.Submission.PollMaxInterval = 30 * time.Second
	}
	if cfg.Submission.PollMaxElapsed == 0 {
		cfg.Submission.PollMaxElapsed = 3 * time.Minute
	}
	if cfg.Submission.PollMaxAttempts == 0 {
		cfg.Submission.PollMaxAttempts = 10
	}
}

// Validate checks settings the application cannot run without.
func (c *Config) Validate() error {
	if c.Trendyol.APIKey == "" {
		return fmt.Errorf("config: trendyol.api_key is required")
	}
	if c.Trendyol.APISecret == "" {
		return fmt.Errorf("config: trendyol.api_secret is required")
	}
	if c.Trendyol.SellerID == "" {
		return fmt.Errorf("config: trendyol.seller_id is required")
	}
	return nil
}
