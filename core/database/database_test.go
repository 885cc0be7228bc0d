package database_test

import (
	"context"
	"errors"
	"testing"

	"cfp-api/core/testutil"

	"github.com/jmoiron/sqlx"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWithTx(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	countEvents := func(slug string) int {
		var n int
		So(db.GetContext(ctx, &n, `SELECT COUNT(*) FROM events WHERE slug = $1`, slug), ShouldBeNil)
		return n
	}

	Convey("Given a transaction that inserts an event", t, func() {
		insert := func(slug string) func(tx *sqlx.Tx) error {
			return func(tx *sqlx.Tx) error {
				_, err := tx.ExecContext(ctx, `INSERT INTO events (slug, name) VALUES ($1, 'Conf')`, slug)
				return err
			}
		}

		Convey("It commits when fn succeeds", func() {
			So(db.WithTx(ctx, insert("committed")), ShouldBeNil)
			So(countEvents("committed"), ShouldEqual, 1)
		})

		Convey("It rolls back when fn fails", func() {
			boom := errors.New("boom")
			err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
				if err := insert("rolled-back")(tx); err != nil {
					return err
				}
				return boom
			})
			So(err, ShouldEqual, boom)
			So(countEvents("rolled-back"), ShouldEqual, 0)
		})

		Convey("It rolls back and repanics when fn panics", func() {
			So(func() {
				_ = db.WithTx(ctx, func(tx *sqlx.Tx) error {
					_ = insert("panicked")(tx)
					panic("boom")
				})
			}, ShouldPanicWith, "boom")
			So(countEvents("panicked"), ShouldEqual, 0)
		})
	})
}
