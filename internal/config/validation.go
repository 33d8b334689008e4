// Package config provides configuration management for the live win probability service.
package config

import (
	"fmt"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("probability", validateProbability)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateProbability validates that a float field sits inside [0, 1]
func validateProbability(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v >= 0 && v <= 1
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// The feature weights must form a convex combination
	w := cfg.Model.Weights
	sum := w.Elo + w.KD + w.Winrate + w.MapWinrate + w.HSPct + w.AvgKills
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("model weights must sum to 1.0, got %.6f", sum)
	}

	// Every normalization range must be non-degenerate
	bounds := map[string]BoundConfig{
		"elo":         cfg.Model.Bounds.Elo,
		"kd":          cfg.Model.Bounds.KD,
		"winrate":     cfg.Model.Bounds.Winrate,
		"map_winrate": cfg.Model.Bounds.MapWinrate,
		"hs_pct":      cfg.Model.Bounds.HSPct,
		"avg_kills":   cfg.Model.Bounds.AvgKills,
	}
	for name, b := range bounds {
		if b.Max <= b.Min {
			return fmt.Errorf("model bounds for %s must satisfy min < max, got [%v, %v]", name, b.Min, b.Max)
		}
	}

	// Clamp windows must be properly ordered
	if cfg.Model.BaseClampMin >= cfg.Model.BaseClampMax {
		return fmt.Errorf("base_clamp_min must be below base_clamp_max")
	}
	if cfg.Model.DynamicClampMin >= cfg.Model.DynamicClampMax {
		return fmt.Errorf("dynamic_clamp_min must be below dynamic_clamp_max")
	}
	if cfg.Model.WeightFloor > cfg.Model.WeightCeiling {
		return fmt.Errorf("weight_floor cannot exceed weight_ceiling")
	}

	if cfg.Widget.Addr != "" && cfg.Widget.PingIntervalSeconds <= 0 {
		return fmt.Errorf("widget ping_interval_seconds must be positive when the widget server is enabled")
	}

	// Validate production environment requirements
	if cfg.IsProduction() {
		if cfg.Faceit.InsecureSkipVerify {
			return fmt.Errorf("production environment must not disable TLS verification")
		}
		if isTestCredential(cfg.Faceit.APIKey) {
			return fmt.Errorf("production environment should not use a placeholder API key")
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "probability":
			errMsg += fmt.Sprintf("- Field '%s' must be between 0 and 1, got '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// isTestCredential checks if a credential looks like a placeholder
func isTestCredential(credential string) bool {
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}
