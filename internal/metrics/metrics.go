package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/logomark/internal/batch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ batch.Observer = (*Recorder)(nil)

// Recorder collects batch metrics into its own registry so that several
// runs in one process never share counters.
type Recorder struct {
	registry *prometheus.Registry

	FilesProcessed *prometheus.CounterVec
	FileDuration   *prometheus.HistogramVec
	BatchFiles     *prometheus.GaugeVec
	LastRun        prometheus.Gauge
	BatchDuration  prometheus.Gauge

	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
	StorageBytesTotal        prometheus.Counter

	mu        sync.Mutex
	startedAt time.Time
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		FilesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logomark_files_processed_total",
				Help: "Total number of files processed",
			},
			[]string{"kind", "status"},
		),

		FileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logomark_file_duration_seconds",
				Help:    "Time spent watermarking a single file",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"kind"},
		),

		BatchFiles: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "logomark_batch_files",
				Help: "Files in the last batch by final status",
			},
			[]string{"status"},
		),

		LastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "logomark_last_run_timestamp_seconds",
				Help: "Unix time the last batch finished",
			},
		),

		BatchDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "logomark_batch_duration_seconds",
				Help: "Wall-clock duration of the last batch",
			},
		),

		StorageOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logomark_storage_operations_total",
				Help: "Total number of publish storage operations",
			},
			[]string{"operation", "status"},
		),

		StorageOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logomark_storage_operation_duration_seconds",
				Help:    "Duration of publish storage operations in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),

		StorageBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logomark_storage_uploaded_bytes_total",
				Help: "Bytes uploaded to the publish bucket",
			},
		),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) OnStart(runID string, total int) {
	r.mu.Lock()
	r.startedAt = time.Now()
	r.mu.Unlock()
	r.BatchFiles.Reset()
}

func (r *Recorder) OnFileDone(idx, total int, o batch.Outcome) {
	kind := string(o.Kind)
	if kind == "" {
		kind = "unknown"
	}
	r.FilesProcessed.WithLabelValues(kind, o.Status).Inc()
	if o.Status != batch.StatusPlanned && o.Duration > 0 {
		r.FileDuration.WithLabelValues(kind).Observe(o.Duration.Seconds())
	}
}

func (r *Recorder) OnFinish(rep *batch.Report) {
	r.BatchFiles.WithLabelValues(batch.StatusSuccess).Set(float64(rep.Summary.Succeeded))
	r.BatchFiles.WithLabelValues(batch.StatusFailed).Set(float64(rep.Summary.Failed))
	r.BatchFiles.WithLabelValues(batch.StatusPlanned).Set(float64(rep.Summary.Planned))
	r.LastRun.Set(float64(rep.FinishedAt.Unix()))
	r.BatchDuration.Set(rep.Elapsed().Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
