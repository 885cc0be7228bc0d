package params

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	. "github.com/smartystreets/goconvey/convey"
)

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestNewQueryParams(t *testing.T) {
	Convey("Given query strings", t, func() {
		Convey("Defaults apply when absent", func() {
			p := NewQueryParams(newContext("/notifications"))
			So(p.PageNumber, ShouldEqual, 1)
			So(p.PageSize, ShouldEqual, 20)
			So(p.Offset(), ShouldEqual, 0)
		})

		Convey("Valid values are used", func() {
			p := NewQueryParams(newContext("/notifications?page=3&limit=10"))
			So(p.PageNumber, ShouldEqual, 3)
			So(p.PageSize, ShouldEqual, 10)
			So(p.Offset(), ShouldEqual, 20)
		})

		Convey("Page size is capped and garbage ignored", func() {
			p := NewQueryParams(newContext("/notifications?page=-1&limit=5000"))
			So(p.PageNumber, ShouldEqual, 1)
			So(p.PageSize, ShouldEqual, 100)
		})
	})
}
