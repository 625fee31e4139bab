package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered on it", func() {
				So(manager, ShouldNotBeNil)
				manager.plansGenerated.Inc()
				count, err := testutil.GatherAndCount(registry, "practiceplan_api_plans_generated_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("plans"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.plansGenerated.Inc()

			Convey("Then metric names and labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if mf.GetName() == "test_plans_plans_generated_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When metrics are disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(registry))

			Convey("Then recording is safe and nothing is exported", func() {
				So(func() { manager.plansGenerated.Inc() }, ShouldNotPanic)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldEqual, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording plan metrics", func() {
			before := testutil.ToFloat64(globalManager.plansGenerated)
			RecordPlanGenerated(1200)
			RecordPromptBytes("system", 2048)
			RecordPromptBytes("user", 9000)
			RecordAssessment(2.5, 1)

			Convey("Then the plan counter advances", func() {
				So(testutil.ToFloat64(globalManager.plansGenerated), ShouldEqual, before+1)
			})
		})

		Convey("When recording generation errors", func() {
			before := testutil.ToFloat64(globalManager.generationErrors.WithLabelValues(KindTransport))
			RecordGenerationError(KindTransport)
			RecordGenerationLatency(1500)

			Convey("Then the labelled counter advances", func() {
				So(testutil.ToFloat64(globalManager.generationErrors.WithLabelValues(KindTransport)), ShouldEqual, before+1)
			})
		})

		Convey("When updating curriculum gauges", func() {
			UpdateCurriculumSongs("Foundation", 4)
			UpdateCurriculumSongs("Master", 0)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.curriculumSongs.WithLabelValues("Foundation")), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.curriculumSongs.WithLabelValues("Master")), ShouldEqual, 0)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("generate_plan", "POST", "200")
				RecordHTTPRequestDuration("generate_plan", "POST", "200", 12.5)
				RecordErrorByEndpoint("generate_plan", "POST", "server_error")
				RecordErrorByType("server_error", "high")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)

			Convey("Then the registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, mf := range families {
					names = append(names, mf.GetName())
				}
				joined := strings.Join(names, ",")
				So(joined, ShouldContainSubstring, "practiceplan_api_http_requests_total")
				So(joined, ShouldContainSubstring, "practiceplan_system_goroutines")
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global manager rebuilt with metrics disabled", t, func() {
		previous, previousRegistry := globalManager, customRegistry
		defer func() { globalManager, customRegistry = previous, previousRegistry }()

		registry := Configure(WithMetricsEnabled(false))

		Convey("Then recording still works and the served registry stays empty", func() {
			So(registry, ShouldPointTo, GetRegistry())
			So(func() { RecordPlanGenerated(10) }, ShouldNotPanic)
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(families, ShouldBeEmpty)
		})
	})
}
