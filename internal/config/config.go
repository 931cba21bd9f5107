package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PRACTICE"

// Config keeps runtime settings shared by the bot daemon and the CLI.
type Config struct {
	LocalDB        string `mapstructure:"local_db"`
	RemoteDSN      string `mapstructure:"remote_dsn"`
	TelegramToken  string `mapstructure:"telegram_token"`
	OwnerID        int64  `mapstructure:"owner_id"`
	ReportTime     string `mapstructure:"report_time"`
	Timezone       string `mapstructure:"timezone"`
	LogLevel       string `mapstructure:"log_level"`
	LogDev         bool   `mapstructure:"log_dev"`
	SeedCategories bool   `mapstructure:"seed_categories"`
	SessionFile    string `mapstructure:"session_file"`

	location *time.Location
}

func defaults(v *viper.Viper) {
	v.SetDefault("local_db", "practice_planner.db")
	v.SetDefault("remote_dsn", "")
	v.SetDefault("telegram_token", "")
	v.SetDefault("owner_id", 0)
	v.SetDefault("report_time", "08:00")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dev", false)
	v.SetDefault("seed_categories", true)
	v.SetDefault("session_file", "practice_session.yaml")
}

// Load reads configuration from an optional file and PRACTICE_* environment
// variables. Environment values win over the file; the file wins over defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.LocalDB = strings.TrimSpace(cfg.LocalDB)
	cfg.RemoteDSN = strings.TrimSpace(cfg.RemoteDSN)
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	if cfg.LocalDB == "" {
		cfg.LocalDB = "practice_planner.db"
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return cfg, err
	}
	cfg.location = loc

	return cfg, nil
}

// Location is the zone used to decide what "today" is.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Validate checks the settings the bot daemon cannot run without.
func (c Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.New("PRACTICE_TELEGRAM_TOKEN is required")
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}
