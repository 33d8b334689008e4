// Package config provides configuration management for the live win probability service.
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Faceit   FaceitConfig   `mapstructure:"faceit" validate:"required"`
	Resolver ResolverConfig `mapstructure:"resolver" validate:"required"`
	Stats    StatsConfig    `mapstructure:"stats" validate:"required"`
	Model    ModelConfig    `mapstructure:"model" validate:"required"`
	Polling  PollingConfig  `mapstructure:"polling" validate:"required"`
	Output   OutputConfig   `mapstructure:"output" validate:"required"`
	Widget   WidgetConfig   `mapstructure:"widget"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	AWS      AWSConfig      `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// FaceitConfig represents upstream API configuration for both the public
// data API and the internal web API fallback.
type FaceitConfig struct {
	APIKey                string  `mapstructure:"api_key" validate:"required"`
	DataAPIURL            string  `mapstructure:"data_api_url" validate:"required,url"`
	WebAPIURL             string  `mapstructure:"web_api_url" validate:"required,url"`
	Game                  string  `mapstructure:"game" validate:"required"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	RetryMax              int     `mapstructure:"retry_max" validate:"gte=0"`
	RetryWaitSeconds      int     `mapstructure:"retry_wait_seconds" validate:"required,gt=0"`
	RequestsPerSecond     float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	Burst                 int     `mapstructure:"burst" validate:"required,gt=0"`
	CacheTTLSeconds       int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheCleanupSeconds   int     `mapstructure:"cache_cleanup_seconds" validate:"required,gt=0"`
	InsecureSkipVerify    bool    `mapstructure:"insecure_skip_verify"`
}

// ResolverConfig represents match resolution configuration
type ResolverConfig struct {
	ForcedMatchID        string `mapstructure:"forced_match_id"`
	HistoryLookbackHours int    `mapstructure:"history_lookback_hours" validate:"required,gt=0"`
	HistoryCandidates    int    `mapstructure:"history_candidates" validate:"required,min=1,max=20"`
	MaxSearchDepth       int    `mapstructure:"max_search_depth" validate:"required,min=1,max=10"`
	// UnknownStatusActive keeps the low confidence fallback that treats a
	// history match with no status and no completion timestamp as possibly
	// active. Disable to require an explicit active status.
	UnknownStatusActive bool `mapstructure:"unknown_status_active"`
}

// StatsConfig represents player metrics configuration
type StatsConfig struct {
	Lookback    int `mapstructure:"lookback" validate:"required,min=1,max=100"`
	FanOutLimit int `mapstructure:"fan_out_limit" validate:"gte=0"`
}

// ModelConfig carries every tuning constant of the probability model as one
// immutable value handed to the engines at startup.
type ModelConfig struct {
	RoundTarget      int           `mapstructure:"round_target" validate:"required,min=1,max=30"`
	Steepness        float64       `mapstructure:"steepness" validate:"required,gt=0"`
	Influence        float64       `mapstructure:"influence" validate:"probability"`
	BaseClampMin     float64       `mapstructure:"base_clamp_min" validate:"probability"`
	BaseClampMax     float64       `mapstructure:"base_clamp_max" validate:"probability"`
	DynamicClampMin  float64       `mapstructure:"dynamic_clamp_min" validate:"probability"`
	DynamicClampMax  float64       `mapstructure:"dynamic_clamp_max" validate:"probability"`
	WeightFloor      float64       `mapstructure:"weight_floor" validate:"probability"`
	WeightCeiling    float64       `mapstructure:"weight_ceiling" validate:"probability"`
	ProgressExponent float64       `mapstructure:"progress_exponent" validate:"required,gt=0"`
	GapInfluence     float64       `mapstructure:"gap_influence" validate:"probability"`
	Weights          WeightsConfig `mapstructure:"weights" validate:"required"`
	Bounds           BoundsConfig  `mapstructure:"bounds" validate:"required"`
}

// WeightsConfig holds the per-feature weights of the player score. The
// weights must sum to 1.0.
type WeightsConfig struct {
	Elo        float64 `mapstructure:"elo" validate:"probability"`
	KD         float64 `mapstructure:"kd" validate:"probability"`
	Winrate    float64 `mapstructure:"winrate" validate:"probability"`
	MapWinrate float64 `mapstructure:"map_winrate" validate:"probability"`
	HSPct      float64 `mapstructure:"hs_pct" validate:"probability"`
	AvgKills   float64 `mapstructure:"avg_kills" validate:"probability"`
}

// BoundConfig is the normalization range for one feature.
type BoundConfig struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// BoundsConfig holds the normalization ranges per feature.
type BoundsConfig struct {
	Elo        BoundConfig `mapstructure:"elo"`
	KD         BoundConfig `mapstructure:"kd"`
	Winrate    BoundConfig `mapstructure:"winrate"`
	MapWinrate BoundConfig `mapstructure:"map_winrate"`
	HSPct      BoundConfig `mapstructure:"hs_pct"`
	AvgKills   BoundConfig `mapstructure:"avg_kills"`
}

// PollingConfig represents live polling configuration
type PollingConfig struct {
	IntervalSeconds         int  `mapstructure:"interval_seconds" validate:"required,gt=0"`
	RateLimitBackoffSeconds int  `mapstructure:"rate_limit_backoff_seconds" validate:"required,gt=0"`
	Once                    bool `mapstructure:"once"`
}

// OutputConfig represents event stream and console output configuration
type OutputConfig struct {
	JSON            bool   `mapstructure:"json"`
	Sentinel        string `mapstructure:"sentinel" validate:"required"`
	ResolveSentinel string `mapstructure:"resolve_sentinel" validate:"required"`
	BarWidth        int    `mapstructure:"bar_width" validate:"required,min=10,max=120"`
}

// WidgetConfig represents the optional websocket broadcast server. An empty
// address disables it.
type WidgetConfig struct {
	Addr                string `mapstructure:"addr"`
	PingIntervalSeconds int    `mapstructure:"ping_interval_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// AWSConfig represents the optional AWS Secrets Manager overlay. An empty
// secrets name disables it.
type AWSConfig struct {
	Region      string `mapstructure:"region"`
	SecretsName string `mapstructure:"secrets_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// RequestTimeout returns the upstream request timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Faceit.RequestTimeoutSeconds) * time.Second
}

// RetryWait returns the fixed backoff applied before a retried request
func (c *Config) RetryWait() time.Duration {
	return time.Duration(c.Faceit.RetryWaitSeconds) * time.Second
}

// CacheTTL returns the response cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Faceit.CacheTTLSeconds) * time.Second
}

// CacheCleanup returns the response cache cleanup interval as a duration
func (c *Config) CacheCleanup() time.Duration {
	return time.Duration(c.Faceit.CacheCleanupSeconds) * time.Second
}

// PollInterval returns the polling interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalSeconds) * time.Second
}

// RateLimitBackoff returns the in-tier backoff applied after a rate limited call
func (c *Config) RateLimitBackoff() time.Duration {
	return time.Duration(c.Polling.RateLimitBackoffSeconds) * time.Second
}

// HistoryLookback returns the resolver history window as a duration
func (c *Config) HistoryLookback() time.Duration {
	return c.Resolver.HistoryLookback()
}

// HistoryLookback returns the history window as a duration
func (rc *ResolverConfig) HistoryLookback() time.Duration {
	return time.Duration(rc.HistoryLookbackHours) * time.Hour
}

// WidgetPingInterval returns the websocket keepalive interval as a duration
func (c *Config) WidgetPingInterval() time.Duration {
	return time.Duration(c.Widget.PingIntervalSeconds) * time.Second
}
