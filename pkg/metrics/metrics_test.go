package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.boardSize.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_board_entries" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When registering the same names twice", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then promauto panics on the duplicate", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording leaderboard activity", func() {
			before := testutil.ToFloat64(globalManager.submissionsRejected.WithLabelValues("non_positive"))
			RecordSubmissionRejected("non_positive")
			RecordSubmissionAccepted("memory")
			UpdateBoardSize(7)
			RecordPersistLatency(1.5)
			RecordPersistError()

			Convey("Then counters and gauges move", func() {
				So(testutil.ToFloat64(globalManager.submissionsRejected.WithLabelValues("non_positive")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.boardSize), ShouldEqual, 7)
			})
		})

		Convey("When recording game activity", func() {
			coins := testutil.ToFloat64(globalManager.coinsCollected)
			RecordCoinsCollected(2)
			RecordBananaContact()
			RecordRoundCompleted(4)
			RecordSubmitFailure()

			Convey("Then the coin counter adds every collection", func() {
				So(testutil.ToFloat64(globalManager.coinsCollected), ShouldEqual, coins+2)
			})
		})

		Convey("When recording http and system activity", func() {
			So(func() {
				RecordHTTPRequest("score", "POST", "200")
				RecordHTTPRequestDuration("score", "POST", "200", 3)
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("score", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 1)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)

			Convey("Then the custom registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "coinrush_http_requests_total")
				So(joined, ShouldContainSubstring, "coinrush_system_goroutine_count")
			})
		})
	})
}
