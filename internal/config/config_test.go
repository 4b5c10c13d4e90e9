package config_test

import (
	"errors"
	"testing"

	"github.com/okian/examscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.ModelPath, convey.ShouldEqual, "models/student_model.json")
			convey.So(cfg.ShutdownTimeoutSec, convey.ShouldEqual, 30)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":       func(c *config.Config) { c.Addr = " " },
			"model_path must not be empty": func(c *config.Config) { c.ModelPath = "" },
			"shutdown_timeout_sec":         func(c *config.Config) { c.ShutdownTimeoutSec = 0 },
			"log_format must be text or json": func(c *config.Config) {
				c.LogFormat = "xml"
			},
		}

		convey.Convey("Then each is rejected with ErrInvalidConfig", func() {
			for msg, mutate := range cases {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, msg)
			}
		})
	})
}
