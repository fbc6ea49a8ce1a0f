package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/attrition/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.AgeMin, convey.ShouldEqual, 16)
				convey.So(cfg.AgeMax, convey.ShouldEqual, 70)
				convey.So(cfg.RetentionDays, convey.ShouldEqual, 90)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ATTRITION_ADDR", ":9090")
			_ = os.Setenv("ATTRITION_AGE_MIN", "18")
			_ = os.Setenv("ATTRITION_AGE_MAX", "67")
			_ = os.Setenv("ATTRITION_SALARY_TOLERANCE", "0.25")
			_ = os.Setenv("ATTRITION_RETENTION_DAYS", "30")
			_ = os.Setenv("ATTRITION_SHUTDOWN_TIMEOUT", "3s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.AgeMin, convey.ShouldEqual, 18)
				convey.So(cfg.AgeMax, convey.ShouldEqual, 67)
				convey.So(cfg.SalaryTolerance, convey.ShouldEqual, 0.25)
				convey.So(cfg.RetentionDays, convey.ShouldEqual, 30)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 3*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":7070"
database_path: "/tmp/preds.db"
model_path: "/etc/attrition/model.yaml"
retention_days: 14
retention_schedule: "@daily"
log_format: json
`
			tmpFile := createTempConfigFile(t, yamlContent)

			_ = os.Setenv("ATTRITION_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "/tmp/preds.db")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "/etc/attrition/model.yaml")
				convey.So(cfg.RetentionDays, convey.ShouldEqual, 14)
				convey.So(cfg.RetentionSchedule, convey.ShouldEqual, "@daily")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.AgeMin, convey.ShouldEqual, 16) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":7070"
retention_days: 14
age_max: 65
`
			tmpFile := createTempConfigFile(t, yamlContent)

			_ = os.Setenv("ATTRITION_CONFIG", tmpFile)
			_ = os.Setenv("ATTRITION_ADDR", ":8081")
			_ = os.Setenv("ATTRITION_RETENTION_DAYS", "7")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")    // Overridden by env
				convey.So(cfg.RetentionDays, convey.ShouldEqual, 7) // Overridden by env
				convey.So(cfg.AgeMax, convey.ShouldEqual, 65)       // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)

			_ = os.Setenv("ATTRITION_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ATTRITION_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("ATTRITION_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the age range is inverted", func() {
			_ = os.Setenv("ATTRITION_AGE_MIN", "60")
			_ = os.Setenv("ATTRITION_AGE_MAX", "20")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ATTRITION_RETENTION_DAYS", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When retention is disabled", func() {
			_ = os.Setenv("ATTRITION_RETENTION_DAYS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then zero is accepted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RetentionDays, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with YAML file containing comments", func() {
			yamlContent := `
# This is a comment
addr: ":9090"  # Inline comment
# Another comment
min_promotion_year: 1950
`
			tmpFile := createTempConfigFile(t, yamlContent)

			_ = os.Setenv("ATTRITION_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should parse YAML with comments", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MinPromotionYear, convey.ShouldEqual, 1950)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ATTRITION_CONFIG",
		"ATTRITION_ADDR",
		"ATTRITION_AGE_MIN",
		"ATTRITION_AGE_MAX",
		"ATTRITION_SALARY_TOLERANCE",
		"ATTRITION_RETENTION_DAYS",
		"ATTRITION_SHUTDOWN_TIMEOUT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "attrition-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpFile.Name()
}
