package config

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given no overrides", t, func() {
		cfg, err := Load()

		Convey("Defaults are applied", func() {
			So(err, ShouldBeNil)
			So(cfg.Server.Port, ShouldEqual, 7070)
			So(cfg.Database.DBName, ShouldEqual, "cfp")
			So(cfg.Queue.MaxRetry, ShouldEqual, 5)
			So(cfg.JWT.AccessTTL, ShouldEqual, 24*time.Hour)
			So(cfg.Schedule.ChangeComparison, ShouldEqual, ComparisonExact)
		})

		Convey("The global instance is available", func() {
			got, ok := GetSafe()
			So(ok, ShouldBeTrue)
			So(got.App.Name, ShouldEqual, cfg.App.Name)
		})
	})

	Convey("Given environment overrides", t, func() {
		t.Setenv("DATABASE_HOST", "db.internal")
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("SCHEDULE_CHANGE_COMPARISON", "loose")

		cfg, err := Load()
		So(err, ShouldBeNil)
		So(cfg.Database.Host, ShouldEqual, "db.internal")
		So(cfg.Server.Port, ShouldEqual, 9090)
		So(cfg.Schedule.ChangeComparison, ShouldEqual, ComparisonLoose)
	})

	Convey("Given an unknown comparison mode", t, func() {
		t.Setenv("SCHEDULE_CHANGE_COMPARISON", "fuzzy")

		_, err := Load()
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "change_comparison")
	})

	Convey("Given storage enabled without a bucket", t, func() {
		t.Setenv("STORAGE_ENABLED", "true")

		_, err := Load()
		So(err, ShouldNotBeNil)
	})
}
