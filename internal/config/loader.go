// Package config provides configuration management for the live win probability service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Pick up a local .env before expansion so ${FACEIT_API_KEY} resolves
	_ = godotenv.Load()

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := newViper()

	// Read the expanded configuration
	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Unmarshal configuration into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with defaults for every field, so the
// binary runs with no config file at all when WINPROB_FACEIT_API_KEY is set.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	_ = godotenv.Load()

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		// Expand environment variables in the configuration (${VAR} syntax)
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	// Unmarshal configuration into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads the full configuration from an environment-supplied path
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("WINPROB_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}

// newViper builds a viper instance with the environment binding shared by
// both load paths.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix("WINPROB")

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

// setDefaults seeds every configuration key. The literal values mirror the
// standard competitive CS2 format and the public FACEIT endpoints.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "live-winprob")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("faceit.api_key", "")
	v.SetDefault("faceit.data_api_url", "https://open.faceit.com/data/v4")
	v.SetDefault("faceit.web_api_url", "https://www.faceit.com/api")
	v.SetDefault("faceit.game", "cs2")
	v.SetDefault("faceit.request_timeout_seconds", 25)
	v.SetDefault("faceit.retry_max", 1)
	v.SetDefault("faceit.retry_wait_seconds", 2)
	v.SetDefault("faceit.requests_per_second", 8.0)
	v.SetDefault("faceit.burst", 4)
	v.SetDefault("faceit.cache_ttl_seconds", 60)
	v.SetDefault("faceit.cache_cleanup_seconds", 300)
	v.SetDefault("faceit.insecure_skip_verify", false)

	v.SetDefault("resolver.forced_match_id", "")
	v.SetDefault("resolver.history_lookback_hours", 24)
	v.SetDefault("resolver.history_candidates", 5)
	v.SetDefault("resolver.max_search_depth", 5)
	v.SetDefault("resolver.unknown_status_active", true)

	v.SetDefault("stats.lookback", 30)
	v.SetDefault("stats.fan_out_limit", 0)

	v.SetDefault("model.round_target", 13)
	v.SetDefault("model.steepness", 10.0)
	v.SetDefault("model.influence", 0.55)
	v.SetDefault("model.base_clamp_min", 0.05)
	v.SetDefault("model.base_clamp_max", 0.95)
	v.SetDefault("model.dynamic_clamp_min", 0.02)
	v.SetDefault("model.dynamic_clamp_max", 0.98)
	v.SetDefault("model.weight_floor", 0.25)
	v.SetDefault("model.weight_ceiling", 0.97)
	v.SetDefault("model.progress_exponent", 0.35)
	v.SetDefault("model.gap_influence", 0.55)

	v.SetDefault("model.weights.elo", 0.30)
	v.SetDefault("model.weights.kd", 0.20)
	v.SetDefault("model.weights.winrate", 0.20)
	v.SetDefault("model.weights.map_winrate", 0.20)
	v.SetDefault("model.weights.hs_pct", 0.05)
	v.SetDefault("model.weights.avg_kills", 0.05)

	v.SetDefault("model.bounds.elo.min", 500.0)
	v.SetDefault("model.bounds.elo.max", 4000.0)
	v.SetDefault("model.bounds.kd.min", 0.4)
	v.SetDefault("model.bounds.kd.max", 2.5)
	v.SetDefault("model.bounds.winrate.min", 0.2)
	v.SetDefault("model.bounds.winrate.max", 0.9)
	v.SetDefault("model.bounds.map_winrate.min", 0.1)
	v.SetDefault("model.bounds.map_winrate.max", 1.0)
	v.SetDefault("model.bounds.hs_pct.min", 0.0)
	v.SetDefault("model.bounds.hs_pct.max", 0.70)
	v.SetDefault("model.bounds.avg_kills.min", 5.0)
	v.SetDefault("model.bounds.avg_kills.max", 30.0)

	v.SetDefault("polling.interval_seconds", 115)
	v.SetDefault("polling.rate_limit_backoff_seconds", 2)
	v.SetDefault("polling.once", false)

	v.SetDefault("output.json", false)
	v.SetDefault("output.sentinel", "__LIVEWINPROB_JSON__")
	v.SetDefault("output.resolve_sentinel", "__MATCHID_JSON__")
	v.SetDefault("output.bar_width", 40)

	v.SetDefault("widget.addr", "")
	v.SetDefault("widget.ping_interval_seconds", 30)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.secrets_name", "")
}
