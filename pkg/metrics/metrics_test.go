package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "santa")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.customLabels["env"], ShouldEqual, "test")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording invitation outcomes", func() {
			before := testutil.ToFloat64(globalManager.invitations.WithLabelValues("failed"))
			RecordInvitation("failed")
			RecordInvitation("failed")

			Convey("Then the counter should advance per status", func() {
				after := testutil.ToFloat64(globalManager.invitations.WithLabelValues("failed"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording store operations", func() {
			before := testutil.ToFloat64(globalManager.storeOperations.WithLabelValues("save", "ok"))
			RecordStoreOperation("save", "ok", 1.5)

			Convey("Then the op/result counter should advance", func() {
				after := testutil.ToFloat64(globalManager.storeOperations.WithLabelValues("save", "ok"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording gauges and histograms", func() {
			So(func() {
				RecordParticipantCollected()
				RecordAssignmentAttempts(3)
				RecordAssignmentError("invalid_input")
				RecordInvitationLatency(12)
				UpdateQueueSize(2)
				UpdateQueueCapacity(8)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerActiveCount(4)
				RecordWorkerError()
				RecordSorterFile("renamed")
				RecordErrorByComponent("dispatcher", "send_failed")
			}, ShouldNotPanic)

			Convey("Then the queue gauge should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 2)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a metrics textfile path", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "santa.prom")
		RecordInvitation("sent")

		Convey("When writing the registry", func() {
			err := WriteTextfile(path)

			Convey("Then the file should contain santa metrics", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(data), "santa_run_invitations_total"), ShouldBeTrue)
			})
		})

		Convey("When the path is empty", func() {
			Convey("Then writing should be a no-op", func() {
				So(WriteTextfile(""), ShouldBeNil)
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(dir, "missing", "santa.prom"))

			Convey("Then it should return ErrWriteTextfile", func() {
				So(errors.Is(err, ErrWriteTextfile), ShouldBeTrue)
			})
		})
	})
}

func TestLatencyBuckets(t *testing.T) {
	Convey("Given a manager with the default latency buckets", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry))

		Convey("When a store operation takes 150ms", func() {
			manager.storeLatency.WithLabelValues("save").Observe(150)
			path := filepath.Join(t.TempDir(), "latency.prom")
			So(prometheus.WriteToTextfile(path, registry), ShouldBeNil)
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then it should land in a millisecond bucket below +Inf", func() {
				So(string(data), ShouldContainSubstring, `santa_run_store_latency_milliseconds_bucket{op="save",le="100"} 0`)
				So(string(data), ShouldContainSubstring, `santa_run_store_latency_milliseconds_bucket{op="save",le="250"} 1`)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a configured namespace and constant labels", t, func() {
		Configure(
			WithNamespace("gifts"),
			WithSubsystem("office"),
			WithCustomLabels(map[string]string{"team": "north"}),
		)
		defer Configure()

		RecordInvitation("sent")
		path := filepath.Join(t.TempDir(), "configured.prom")
		So(WriteTextfile(path), ShouldBeNil)
		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)

		Convey("Then exported metrics should carry them", func() {
			So(string(data), ShouldContainSubstring, `gifts_office_invitations_total{status="sent",team="north"} 1`)
			So(string(data), ShouldNotContainSubstring, "santa_run_")
		})
	})
}
