package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/attrition/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DatabasePath, convey.ShouldEqual, "attrition.db")
			convey.So(cfg.ModelPath, convey.ShouldBeEmpty)
			convey.So(cfg.AgeMin, convey.ShouldEqual, 16)
			convey.So(cfg.AgeMax, convey.ShouldEqual, 70)
			convey.So(cfg.SalaryTolerance, convey.ShouldEqual, 0.5)
			convey.So(cfg.MinPromotionYear, convey.ShouldEqual, 1900)
			convey.So(cfg.RetentionDays, convey.ShouldEqual, 90)
			convey.So(cfg.RetentionSchedule, convey.ShouldEqual, "0 3 * * *")
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 10*time.Second)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a config with an inverted age range", t, func() {
		cfg := config.New()
		cfg.AgeMin, cfg.AgeMax = 70, 16

		convey.Convey("Then validation fails with ErrInvalidConfig", func() {
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "AgeMax")
		})
	})

	convey.Convey("Given a config with an unknown log level", t, func() {
		cfg := config.New()
		cfg.LogLevel = "verbose"

		convey.Convey("Then validation fails", func() {
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a config with a negative salary tolerance", t, func() {
		cfg := config.New()
		cfg.SalaryTolerance = -0.1

		convey.Convey("Then validation fails", func() {
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
