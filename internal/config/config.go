package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/erpclean/erpclean-go/pkg/erpclean"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name" json:"app_name"`
	LogLevel       string `mapstructure:"log_level" json:"log_level"`
	AccessToken    string `mapstructure:"access_token" json:"-"`
	UserToken      string `mapstructure:"user_token" json:"-"`
	EnvironmentRaw string `mapstructure:"environment" json:"environment"`
	Debug          bool   `mapstructure:"debug" json:"debug"`
	TimeoutSeconds int64  `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	BaseURLsFile   string `mapstructure:"base_urls_file" json:"base_urls_file"`

	JournalType           string `mapstructure:"journal_type" json:"journal_type"`
	JournalPath           string `mapstructure:"journal_path" json:"journal_path"`
	JournalTTLSeconds     int64  `mapstructure:"journal_ttl_seconds" json:"journal_ttl_seconds"`
	JournalCleanupSeconds int64  `mapstructure:"journal_cleanup_interval_seconds" json:"journal_cleanup_interval_seconds"`

	Environment            erpclean.Environment `mapstructure:"-" json:"-"`
	Timeout                time.Duration        `mapstructure:"-" json:"-"`
	JournalTTL             time.Duration        `mapstructure:"-" json:"-"`
	JournalCleanupInterval time.Duration        `mapstructure:"-" json:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "erpclean")
	v.SetDefault("log_level", "info")
	v.SetDefault("access_token", "")
	v.SetDefault("user_token", "")
	v.SetDefault("environment", "")
	v.SetDefault("debug", false)
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("base_urls_file", "")
	v.SetDefault("journal_type", "bbolt")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	v.SetEnvPrefix("erpclean")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// An unset environment stays zero; the client rejects every call until one is chosen.
	if strings.TrimSpace(cfg.EnvironmentRaw) != "" {
		env, err := erpclean.ParseEnvironment(cfg.EnvironmentRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid environment: %w", err)
		}
		cfg.Environment = env
	}

	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid timeout_seconds (must be positive seconds)")
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	return &cfg, nil
}
