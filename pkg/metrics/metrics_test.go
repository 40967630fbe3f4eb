package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.01, 0.1, 1}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should register its collectors", func() {
				So(manager, ShouldNotBeNil)
				manager.RecordCardSubmitted()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on an isolated registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording catalog events", func() {
			m.RecordHTTPRequest("cards", "GET", "200", 0.02)
			m.RecordStoreCall("list_cards", 0.001, false)
			m.RecordStoreCall("rate_card", 0.001, true)
			m.RecordPage("cards", true)
			m.RecordPage("cards", false)
			m.RecordValidationFailure("out_of_bounds")
			m.RecordCursorDecodeFailure()
			m.RecordRating("card")
			m.RecordRating("card")
			m.RecordCardSubmitted()
			m.UpdatePool(3, 1, 2, 5)
			m.UpdateSystem(1<<20, 12, 0.4)

			Convey("Then the counters reflect the calls", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("cards", "GET", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.storeErrors.WithLabelValues("rate_card")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.pagesServed.WithLabelValues("cards", "shuffle")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.pagesServed.WithLabelValues("cards", "ordered")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.validationFailures.WithLabelValues("out_of_bounds")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cursorDecodeFailures), ShouldEqual, 1)
				So(testutil.ToFloat64(m.ratingsRecorded.WithLabelValues("card")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.cardsSubmitted), ShouldEqual, 1)
				So(testutil.ToFloat64(m.poolOpen), ShouldEqual, 3)
				So(testutil.ToFloat64(m.poolInUse), ShouldEqual, 1)
				So(testutil.ToFloat64(m.poolIdle), ShouldEqual, 2)
				So(testutil.ToFloat64(m.poolWaitCount), ShouldEqual, 5)
				So(testutil.ToFloat64(m.systemMemoryUsage), ShouldEqual, 1<<20)
				So(testutil.ToFloat64(m.systemGoroutineCount), ShouldEqual, 12)
			})
		})

		Convey("When metrics are disabled", func() {
			off := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			off.RecordCardSubmitted()
			off.RecordCursorDecodeFailure()

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(off.cardsSubmitted), ShouldEqual, 0)
				So(testutil.ToFloat64(off.cursorDecodeFailures), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		RecordRating("combination")

		Convey("Then it is gatherable", func() {
			So(GetRegistry(), ShouldNotBeNil)
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
