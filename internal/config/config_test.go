// Package config provides configuration management for the live win probability service.
package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	appName                      = "live-winprob"
	developmentEnv               = "development"
	testAppName                  = "test-app"
	expandedSecretValue          = "expanded_secret_value"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != appName {
		t.Errorf("expected app name '%s', got '%s'", appName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Model.RoundTarget != 13 {
		t.Errorf("expected round target 13, got %d", cfg.Model.RoundTarget)
	}

	if cfg.Polling.IntervalSeconds != 115 {
		t.Errorf("expected poll interval 115, got %d", cfg.Polling.IntervalSeconds)
	}

	if cfg.Model.Weights.Elo != 0.30 {
		t.Errorf("expected elo weight 0.30, got %v", cfg.Model.Weights.Elo)
	}

	if cfg.Model.Bounds.KD.Max != 2.5 {
		t.Errorf("expected kd bound max 2.5, got %v", cfg.Model.Bounds.KD.Max)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	os.Setenv("WINPROB_APP_NAME", testAppName)
	defer os.Unsetenv("WINPROB_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadConfigExpansion tests ${VAR} expansion inside the YAML file
func TestLoadConfigExpansion(t *testing.T) {
	os.Setenv("WINPROB_TEST_SECRET", expandedSecretValue)
	defer os.Unsetenv("WINPROB_TEST_SECRET")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Faceit.APIKey != expandedSecretValue {
		t.Errorf("expected expanded api key '%s', got '%s'", expandedSecretValue, cfg.Faceit.APIKey)
	}
}

// TestLoadWithDefaultsNoFile tests that defaults alone produce a usable config
func TestLoadWithDefaultsNoFile(t *testing.T) {
	os.Setenv("WINPROB_FACEIT_API_KEY", "key-from-env-0123456789")
	defer os.Unsetenv("WINPROB_FACEIT_API_KEY")

	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Faceit.APIKey != "key-from-env-0123456789" {
		t.Errorf("expected api key from environment, got '%s'", cfg.Faceit.APIKey)
	}

	if cfg.Model.RoundTarget != 13 {
		t.Errorf("expected default round target 13, got %d", cfg.Model.RoundTarget)
	}

	if cfg.Output.Sentinel != "__LIVEWINPROB_JSON__" {
		t.Errorf("unexpected default sentinel '%s'", cfg.Output.Sentinel)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	err = Validate(cfg)
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateWeightsMustSum tests the convex combination constraint
func TestValidateWeightsMustSum(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Model.Weights.Elo = 0.50
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for weights not summing to 1.0")
	}
	if !strings.Contains(err.Error(), "sum to 1.0") {
		t.Errorf("unexpected error message: %v", err)
	}
}

// TestValidateDegenerateBounds tests the bound ordering constraint
func TestValidateDegenerateBounds(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Model.Bounds.Elo = BoundConfig{Min: 4000, Max: 500}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for inverted bounds")
	}
}

// TestValidateProductionInsecure tests the production TLS constraint
func TestValidateProductionInsecure(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = "production"
	cfg.Faceit.InsecureSkipVerify = true
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for insecure TLS in production")
	}
}

// TestDurationHelpers tests the duration helper methods
func TestDurationHelpers(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if cfg.PollInterval() != 115*time.Second {
		t.Errorf("unexpected poll interval %v", cfg.PollInterval())
	}
	if cfg.HistoryLookback() != 24*time.Hour {
		t.Errorf("unexpected history lookback %v", cfg.HistoryLookback())
	}
	if cfg.RateLimitBackoff() != 2*time.Second {
		t.Errorf("unexpected rate limit backoff %v", cfg.RateLimitBackoff())
	}
	if cfg.CacheTTL() != 60*time.Second {
		t.Errorf("unexpected cache ttl %v", cfg.CacheTTL())
	}
}

// TestEnvironmentHelpers tests the environment helper methods
func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{}

	cfg.App.Environment = developmentEnv
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("development helpers disagree")
	}

	cfg.App.Environment = "production"
	if !cfg.IsProduction() || cfg.IsStaging() {
		t.Error("production helpers disagree")
	}
}
