// Package config loads settings from defaults, an optional YAML file, a .env
// file and FW_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/komsit37/fw/pkg/fw/upstream"
)

const EnvPrefix = "FW"

type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Log      LogConfig      `mapstructure:"log"`
	Display  DisplayConfig  `mapstructure:"display"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type RefreshConfig struct {
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	TradingHoursOnly bool          `mapstructure:"trading_hours_only"`
}

type UpstreamConfig struct {
	EstimateURL string        `mapstructure:"estimate_url"`
	SearchURL   string        `mapstructure:"search_url"`
	HistoryURL  string        `mapstructure:"history_url"`
	HolidayURL  string        `mapstructure:"holiday_url"`
	Rate        int           `mapstructure:"rate"`
	BatchSize   int           `mapstructure:"batch_size"`
	Parallel    int           `mapstructure:"parallel"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	CacheSize   int           `mapstructure:"cache_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DisplayConfig struct {
	Color       bool `mapstructure:"color"`
	MaxColWidth int  `mapstructure:"max_col_width"`
}

// MinInterval is the shortest accepted refresh interval.
const MinInterval = 5 * time.Second

func defaults(v *viper.Viper) {
	v.SetDefault("store.driver", "yaml")
	v.SetDefault("store.path", "")
	v.SetDefault("refresh.interval", time.Minute)
	v.SetDefault("refresh.timeout", 10*time.Second)
	v.SetDefault("refresh.trading_hours_only", true)
	v.SetDefault("upstream.estimate_url", upstream.DefaultEstimateURL)
	v.SetDefault("upstream.search_url", upstream.DefaultSearchURL)
	v.SetDefault("upstream.history_url", upstream.DefaultHistoryURL)
	v.SetDefault("upstream.holiday_url", upstream.DefaultHolidayURL)
	v.SetDefault("upstream.rate", 10)
	v.SetDefault("upstream.batch_size", 50)
	v.SetDefault("upstream.parallel", 4)
	v.SetDefault("upstream.cache_ttl", 5*time.Minute)
	v.SetDefault("upstream.cache_size", 128)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("display.color", true)
	v.SetDefault("display.max_col_width", 40)
}

// Setup fills defaults that depend on the environment and validates.
func (c *Config) Setup() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = "yaml"
	}
	if c.Store.Driver != "yaml" && c.Store.Driver != "sqlite" {
		return fmt.Errorf("store.driver %q: want yaml or sqlite", c.Store.Driver)
	}
	if c.Store.Path == "" {
		name := "watchlist.yaml"
		if c.Store.Driver == "sqlite" {
			name = "watchlist.db"
		}
		c.Store.Path = filepath.Join(Dir(), name)
	}
	if c.Refresh.Interval < MinInterval {
		return fmt.Errorf("refresh.interval %s: must be at least %s", c.Refresh.Interval, MinInterval)
	}
	if c.Refresh.Timeout <= 0 {
		c.Refresh.Timeout = 10 * time.Second
	}
	if c.Upstream.Rate < 0 {
		return fmt.Errorf("upstream.rate %d: must not be negative", c.Upstream.Rate)
	}
	if c.Upstream.CacheSize <= 0 {
		c.Upstream.CacheSize = 128
	}
	return nil
}

// UpstreamClient returns the settings for upstream.New.
func (c *Config) UpstreamClient() upstream.Config {
	u := upstream.Config{
		EstimateURL: c.Upstream.EstimateURL,
		SearchURL:   c.Upstream.SearchURL,
		HistoryURL:  c.Upstream.HistoryURL,
		HolidayURL:  c.Upstream.HolidayURL,
		Timeout:     c.Refresh.Timeout,
		Rate:        c.Upstream.Rate,
		BatchSize:   c.Upstream.BatchSize,
		Parallel:    c.Upstream.Parallel,
	}
	u.Setup()
	return u
}

// Dir is the directory holding the config file and the default store:
// $XDG_CONFIG_HOME/fw, else the user config dir, else ".fw".
func Dir() string {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "fw")
	}
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "fw")
	}
	return ".fw"
}

// Loader reads and re-reads the configuration.
type Loader struct {
	v *viper.Viper
}

// Load reads .env, then path (or config.yaml in Dir when path is empty).
// A missing default config file is not an error; a missing explicit one is.
func Load(path string) (*Config, *Loader, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	l := &Loader{v: v}
	cfg, err := l.decode()
	if err != nil {
		return nil, nil, err
	}
	return cfg, l, nil
}

// File is the config file in use, empty when running on defaults.
func (l *Loader) File() string { return l.v.ConfigFileUsed() }

// Watch calls fn with the new configuration each time the file changes.
// Invalid edits are reported to onErr and otherwise ignored.
func (l *Loader) Watch(fn func(*Config), onErr func(error)) {
	if l.File() == "" {
		return
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Setup(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
