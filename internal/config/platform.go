package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PlatformConfig carries marketplace-wide defaults applied when a writer
// profile does not override them. Loaded from platform.yml and hot-reloaded.
type PlatformConfig struct {
	DefaultFeeBps       int    `mapstructure:"defaultFeeBps"`
	DefaultLeadDays     int    `mapstructure:"defaultLeadDays"`
	DefaultSlotsPerWeek int    `mapstructure:"defaultSlotsPerWeek"`
	MaxWeeksAhead       int    `mapstructure:"maxWeeksAhead"`
	DefaultCurrency     string `mapstructure:"defaultCurrency"`
}

func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		DefaultFeeBps:       1000, // 10%
		DefaultLeadDays:     7,
		DefaultSlotsPerWeek: 1,
		MaxWeeksAhead:       12,
		DefaultCurrency:     "usd",
	}
}

type PlatformConfigHolder struct {
	current atomic.Value // holds PlatformConfig
}

// NewStaticPlatformHolder wraps a fixed config. Used by tests.
func NewStaticPlatformHolder(cfg PlatformConfig) *PlatformConfigHolder {
	holder := &PlatformConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPlatformConfigHolder(log *zap.Logger) (*PlatformConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("platform")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/sponsorloop")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SPONSORLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPlatformConfig()
	v.SetDefault("platform.defaultFeeBps", defaults.DefaultFeeBps)
	v.SetDefault("platform.defaultLeadDays", defaults.DefaultLeadDays)
	v.SetDefault("platform.defaultSlotsPerWeek", defaults.DefaultSlotsPerWeek)
	v.SetDefault("platform.maxWeeksAhead", defaults.MaxWeeksAhead)
	v.SetDefault("platform.defaultCurrency", defaults.DefaultCurrency)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg PlatformConfig
	if err := v.UnmarshalKey("platform", &cfg); err != nil {
		return nil, err
	}
	if err := validatePlatformConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PlatformConfigHolder{}
	holder.current.Store(cfg)

	log = log.Named("platform.config")
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlatformConfig
		if err := v.UnmarshalKey("platform", &updated); err != nil {
			log.Warn("platform config reload failed", zap.Error(err))
			return
		}
		if err := validatePlatformConfig(updated); err != nil {
			log.Warn("invalid platform config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("platform config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *PlatformConfigHolder) Get() PlatformConfig {
	return h.current.Load().(PlatformConfig)
}

func validatePlatformConfig(cfg PlatformConfig) error {
	if cfg.DefaultFeeBps < 0 || cfg.DefaultFeeBps > 10000 {
		return errors.New("platform.defaultFeeBps must be within [0, 10000]")
	}
	if cfg.DefaultLeadDays < 0 {
		return errors.New("platform.defaultLeadDays cannot be negative")
	}
	if cfg.DefaultSlotsPerWeek < 1 {
		return errors.New("platform.defaultSlotsPerWeek must be at least 1")
	}
	if cfg.MaxWeeksAhead < 1 {
		return errors.New("platform.maxWeeksAhead must be at least 1")
	}
	return nil
}
