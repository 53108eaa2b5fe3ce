package config_test

import (
	"testing"
	"time"

	"github.com/okian/santa/internal/config"
	"github.com/okian/santa/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.StoreDir, convey.ShouldEqual, ".")
			convey.So(cfg.Workers, convey.ShouldEqual, 1)
			convey.So(cfg.MaxAttempts, convey.ShouldEqual, 10_000)
			convey.So(cfg.SendTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.TokenFile, convey.ShouldEqual, "token.json")
			convey.So(cfg.CredentialsFile, convey.ShouldEqual, "credentials.json")
			convey.So(cfg.Mode(), convey.ShouldEqual, model.ModeLive)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then a live run should require a sender", func() {
			convey.So(cfg.RequireSender(), convey.ShouldNotBeNil)
			cfg.Sender = "santa@example.com"
			convey.So(cfg.RequireSender(), convey.ShouldBeNil)
		})

		convey.Convey("Then dry_run should select the dry-run mode", func() {
			cfg.DryRun = true
			convey.So(cfg.Mode(), convey.ShouldEqual, model.ModeDryRun)
		})
	})
}
