// Package metrics provides Prometheus metrics for conversion runs, written to
// a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/imgtowebm/internal/pipeline"
)

const namespace = "imgtowebm"

// Run collects the metrics of conversion runs. It implements
// pipeline.Observer. Each Run owns its registry.
type Run struct {
	registry *prometheus.Registry

	framesEncoded prometheus.Counter
	packetsMuxed  prometheus.Counter
	keyframes     prometheus.Counter
	outputBytes   prometheus.Counter
	progress      prometheus.Gauge
	runDuration   prometheus.Gauge
	lastSuccess   prometheus.Gauge
	runs          *prometheus.CounterVec
}

// NewRun creates the metrics on a fresh registry.
func NewRun() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Run{
		registry: reg,
		framesEncoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "encoder",
			Name:      "frames_total",
			Help:      "Frames submitted to the encoder",
		}),
		packetsMuxed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "muxer",
			Name:      "packets_total",
			Help:      "Encoded packets written to the container",
		}),
		keyframes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "muxer",
			Name:      "keyframes_total",
			Help:      "Key frames written to the container",
		}),
		outputBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "muxer",
			Name:      "payload_bytes_total",
			Help:      "Compressed payload bytes written to the container",
		}),
		progress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_ratio",
			Help:      "Fraction of the current run's frames that were encoded",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Conversion runs by result",
		}, []string{"result"}),
	}
}

// FrameEncoded implements pipeline.Observer.
func (r *Run) FrameEncoded(index, total, _ int) {
	r.framesEncoded.Inc()
	if total > 0 {
		r.progress.Set(float64(index+1) / float64(total))
	}
}

// PacketMuxed implements pipeline.Observer.
func (r *Run) PacketMuxed(p pipeline.Packet) {
	r.packetsMuxed.Inc()
	r.outputBytes.Add(float64(len(p.Data)))
	if p.Keyframe {
		r.keyframes.Inc()
	}
}

// ObserveRun records the outcome of one run.
func (r *Run) ObserveRun(duration time.Duration, err error, now time.Time) {
	r.runDuration.Set(duration.Seconds())
	if err != nil {
		r.runs.WithLabelValues("error").Inc()
		return
	}
	r.runs.WithLabelValues("success").Inc()
	r.lastSuccess.Set(float64(now.Unix()))
}

// Registry exposes the registry, mostly for tests.
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile atomically writes all metrics in the text exposition format.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
