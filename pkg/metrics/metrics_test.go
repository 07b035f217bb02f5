package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording rotation metrics", func() {
			Convey("Then the helpers should not panic", func() {
				So(func() {
					RecordSlideShown("business")
					RecordSelection()
					RecordLedgerReset()
					RecordManualCommand("next")
					RecordDeeplinkResolve()
					RecordDeeplinkMiss()
					UpdatePopulationSize(5)
					UpdatePopulationByKind("fact", 2)
					UpdateLedgerTotalShows(7)
					UpdatePaused(true)
					UpdatePaused(false)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording refresh and queue metrics", func() {
			Convey("Then the helpers should not panic", func() {
				So(func() {
					RecordRefresh()
					RecordRefreshFailure()
					RecordRefreshDuration(12.5)
					RecordSourceFetchError("events")
					UpdateQueueCapacity(64)
					UpdateQueueSize(1)
					UpdateQueueUtilization(0.5)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(1.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When fetching the registry", func() {
			Convey("Then it should be non-nil", func() {
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}
