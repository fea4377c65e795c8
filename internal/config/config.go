// Package config holds ccmeter settings, the model rate table, and the
// subscription plan table.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all ccmeter configuration.
type Config struct {
	General GeneralConfig    `toml:"general"`
	Cache   CacheConfig      `toml:"cache"`
	Pricing PricingOverrides `toml:"pricing"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir     string `toml:"data_dir,omitempty"`
	Plan        string `toml:"plan"`
	DefaultDays int    `toml:"default_days"`
}

// CacheConfig controls report memoization.
type CacheConfig struct {
	TTLSeconds           int `toml:"ttl_seconds"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
}

// PricingOverrides allows user-defined rates for specific model patterns.
type PricingOverrides struct {
	Overrides map[string]RateOverride `toml:"overrides,omitempty"`
}

// RateOverride holds per-pattern rate overrides. Nil fields keep the
// built-in rate.
type RateOverride struct {
	InputPerMTok      *float64 `toml:"input_per_mtok,omitempty"`
	OutputPerMTok     *float64 `toml:"output_per_mtok,omitempty"`
	CacheWritePerMTok *float64 `toml:"cache_write_per_mtok,omitempty"`
	CacheReadPerMTok  *float64 `toml:"cache_read_per_mtok,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Plan:        "Pro",
			DefaultDays: 7,
		},
		Cache: CacheConfig{
			TTLSeconds:           60,
			SweepIntervalSeconds: 300,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccmeter")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ccmeter")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Tiers merges the configured overrides over the built-in rate table.
// An override whose pattern is not in the table adds a new tier; its
// nil fields stay zero in that case.
func (c Config) Tiers() []PricingTier {
	tiers := make([]PricingTier, len(DefaultTiers))
	copy(tiers, DefaultTiers)

	seen := make(map[string]int, len(tiers))
	for i, t := range tiers {
		seen[t.Pattern] = i
	}

	for pattern, ov := range c.Pricing.Overrides {
		idx, ok := seen[pattern]
		if !ok {
			tiers = append(tiers, PricingTier{Pattern: pattern})
			idx = len(tiers) - 1
		}
		if ov.InputPerMTok != nil {
			tiers[idx].InputPerMTok = *ov.InputPerMTok
		}
		if ov.OutputPerMTok != nil {
			tiers[idx].OutputPerMTok = *ov.OutputPerMTok
		}
		if ov.CacheWritePerMTok != nil {
			tiers[idx].CacheWritePerMTok = *ov.CacheWritePerMTok
		}
		if ov.CacheReadPerMTok != nil {
			tiers[idx].CacheReadPerMTok = *ov.CacheReadPerMTok
		}
	}

	return tiers
}
