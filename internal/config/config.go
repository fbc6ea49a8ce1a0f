// Package config defines the service configuration and how it is loaded.
//
// Conventions:
// - Flat snake_case keys shared by the YAML file and ATTRITION_ env vars.
// - New returns a Config holding the defaults; Load layers overrides on top.
// - Errors returned from this package wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// DatabasePath is the SQLite file holding inputs and outputs.
	DatabasePath string `koanf:"database_path" validate:"required"`

	// ModelPath points to a YAML model artifact. Empty uses the embedded model
	// and disables hot reload.
	ModelPath string `koanf:"model_path"`

	// AgeMin and AgeMax bound the realistic age range.
	AgeMin int `koanf:"age_min" validate:"gte=0"`
	AgeMax int `koanf:"age_max" validate:"gtfield=AgeMin"`

	// SalaryTolerance is the accepted relative gap between the yearly salary
	// and twelve monthly incomes.
	SalaryTolerance float64 `koanf:"salary_tolerance" validate:"gte=0"`

	// MinPromotionYear is the earliest plausible last promotion year.
	MinPromotionYear int `koanf:"min_promotion_year" validate:"gte=0"`

	// RetentionDays bounds how long predictions are kept. Zero keeps them forever.
	RetentionDays int `koanf:"retention_days" validate:"gte=0"`

	// RetentionSchedule is a standard cron expression for the prune job.
	RetentionSchedule string `koanf:"retention_schedule"`

	// RateLimitRPS and RateLimitBurst throttle POST /predict. Zero RPS disables it.
	RateLimitRPS   float64 `koanf:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gte=0"`

	// ModelReloadDebounce coalesces bursts of file events on ModelPath.
	ModelReloadDebounce time.Duration `koanf:"model_reload_debounce" validate:"gte=0"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8080",
		DatabasePath:        "attrition.db",
		AgeMin:              16,
		AgeMax:              70,
		SalaryTolerance:     0.5,
		MinPromotionYear:    1900,
		RetentionDays:       90,
		RetentionSchedule:   "0 3 * * *",
		RateLimitRPS:        50,
		RateLimitBurst:      100,
		ModelReloadDebounce: 250 * time.Millisecond,
		ShutdownTimeout:     10 * time.Second,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
