package cache

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryCache(t *testing.T) {
	Convey("Given a memory cache", t, func() {
		ctx := context.Background()
		c := NewMemoryCache()
		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		type phase struct {
			Name string `json:"name"`
		}

		Convey("A missing key is a cache miss", func() {
			var p phase
			So(c.GetJSON(ctx, "missing", &p), ShouldEqual, ErrCacheMiss)
		})

		Convey("Values round-trip as JSON", func() {
			So(c.SetJSON(ctx, "k", phase{Name: "Review"}, time.Minute), ShouldBeNil)
			var p phase
			So(c.GetJSON(ctx, "k", &p), ShouldBeNil)
			So(p.Name, ShouldEqual, "Review")
		})

		Convey("Entries expire after their TTL", func() {
			_ = c.SetJSON(ctx, "k", phase{Name: "Review"}, time.Minute)
			now = now.Add(2 * time.Minute)
			var p phase
			So(c.GetJSON(ctx, "k", &p), ShouldEqual, ErrCacheMiss)
		})

		Convey("Deleted keys miss", func() {
			_ = c.SetJSON(ctx, "k", phase{Name: "Review"}, 0)
			So(c.Del(ctx, "k"), ShouldBeNil)
			var p phase
			So(c.GetJSON(ctx, "k", &p), ShouldEqual, ErrCacheMiss)
		})
	})

	Convey("The noop cache always misses", t, func() {
		var c Cache = NoopCache{}
		So(c.SetJSON(context.Background(), "k", 1, 0), ShouldBeNil)
		var v int
		So(c.GetJSON(context.Background(), "k", &v), ShouldEqual, ErrCacheMiss)
	})
}
