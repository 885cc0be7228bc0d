package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIsUniqueViolation(t *testing.T) {
	Convey("Given errors raised by the driver", t, func() {
		dup := &pq.Error{Code: "23505", Constraint: "schedules_event_id_version_key"}

		Convey("A unique violation is detected through wrapping", func() {
			So(IsUniqueViolation(fmt.Errorf("insert: %w", dup)), ShouldBeTrue)
		})

		Convey("The constraint name can narrow the match", func() {
			So(IsUniqueViolation(dup, "schedules_event_id_version_key"), ShouldBeTrue)
			So(IsUniqueViolation(dup, "event_favourites_user_id_event_id_key"), ShouldBeFalse)
		})

		Convey("Other driver errors are not unique violations", func() {
			So(IsUniqueViolation(&pq.Error{Code: "23503"}), ShouldBeFalse)
			So(IsUniqueViolation(errors.New("boom")), ShouldBeFalse)
			So(IsUniqueViolation(nil), ShouldBeFalse)
		})
	})
}

func TestIsNoRows(t *testing.T) {
	Convey("sql.ErrNoRows is recognised when wrapped", t, func() {
		So(IsNoRows(fmt.Errorf("get: %w", sql.ErrNoRows)), ShouldBeTrue)
		So(IsNoRows(errors.New("other")), ShouldBeFalse)
	})
}
