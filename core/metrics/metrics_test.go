package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCollectors(t *testing.T) {
	Convey("Given the package registry", t, func() {
		Convey("Counters accumulate per label set", func() {
			before := testutil.ToFloat64(TasksProcessed.WithLabelValues("test:type", "success"))
			TasksProcessed.WithLabelValues("test:type", "success").Inc()
			So(testutil.ToFloat64(TasksProcessed.WithLabelValues("test:type", "success")), ShouldEqual, before+1)
		})

		Convey("The handler exposes registered families", func() {
			ScheduleReleases.Inc()
			rec := httptest.NewRecorder()
			Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.Contains(rec.Body.String(), "cfp_schedule_releases_total"), ShouldBeTrue)
		})
	})
}
