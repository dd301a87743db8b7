package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Series   SeriesConfig   `mapstructure:"series"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type ServerConfig struct {
	Port               string `mapstructure:"port"`
	ReadTimeoutSec     int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec    int    `mapstructure:"write_timeout_sec"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec"`
}

type ProviderConfig struct {
	Kind  ProviderKind `mapstructure:"kind"`
	Yahoo YahooConfig  `mapstructure:"yahoo"`
	File  FileConfig   `mapstructure:"file"`
}

type YahooConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	SessionURL    string `mapstructure:"session_url"` // issues the cookie the crumb is bound to
	UserAgent     string `mapstructure:"user_agent"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
	RatePerSecond int    `mapstructure:"rate_per_second"`
}

type FileConfig struct {
	Directory string `mapstructure:"directory"`
}

type SeriesConfig struct {
	HistoryDays int `mapstructure:"history_days"`
}

type SnapshotConfig struct {
	Workers  int  `mapstructure:"workers"`
	Compress bool `mapstructure:"compress"`
}

type LoggingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Level     string `mapstructure:"level"`
}

// NotifyConfig holds ntfy settings for snapshot batch notifications.
type NotifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Server   string `mapstructure:"server"`
	Topic    string `mapstructure:"topic"`
	Priority string `mapstructure:"priority"` // min, low, default, high, urgent
	Tags     string `mapstructure:"tags"`     // comma-separated emoji tags
	Token    string `mapstructure:"token"`    // optional, for private topics
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout_sec", 30)
	v.SetDefault("server.write_timeout_sec", 30)
	v.SetDefault("server.shutdown_timeout_sec", 30)
	v.SetDefault("provider.kind", string(ProviderYahoo))
	v.SetDefault("provider.yahoo.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("provider.yahoo.session_url", "https://fc.yahoo.com")
	v.SetDefault("provider.yahoo.user_agent", "Mozilla/5.0 (compatible; deltagraph/1.0)")
	v.SetDefault("provider.yahoo.timeout_sec", 30)
	v.SetDefault("provider.yahoo.rate_per_second", 5)
	v.SetDefault("provider.file.directory", "snapshots")
	v.SetDefault("series.history_days", MaxHistoryDays)
	v.SetDefault("snapshot.workers", 3)
	v.SetDefault("snapshot.compress", false)
	v.SetDefault("logging.enabled", false)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.server", "https://ntfy.sh")
	v.SetDefault("notify.topic", "")
	v.SetDefault("notify.priority", "default")
	v.SetDefault("notify.tags", "package")
	v.SetDefault("notify.token", "")

	// Environment variable support
	v.SetEnvPrefix("DELTAGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// PORT is the conventional override on hosted platforms
	_ = v.BindEnv("server.port", "DELTAGRAPH_SERVER_PORT", "PORT")

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
