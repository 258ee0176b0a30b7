package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/logomark/internal/batch"
	"github.com/rs/zerolog"
)

var _ batch.Observer = (*Journal)(nil)

// Journal appends one JSON line per batch event. It is meant to be kept
// next to the output directory so a run can be audited later.
type Journal struct {
	mu     sync.Mutex
	log    zerolog.Logger
	closer io.Closer
	runID  string
}

// Open appends to the journal at path, creating it and its parent
// directories if needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j := New(f)
	j.closer = f
	return j, nil
}

func New(w io.Writer) *Journal {
	return &Journal{
		log: zerolog.New(w).With().Timestamp().Logger(),
	}
}

func (j *Journal) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

func (j *Journal) OnStart(runID string, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runID = runID
	j.log.Info().
		Str("event", "start").
		Str("run_id", runID).
		Int("total", total).
		Send()
}

func (j *Journal) OnFileDone(idx, total int, o batch.Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()

	level := zerolog.InfoLevel
	if o.Failed() {
		level = zerolog.WarnLevel
	}

	ev := j.log.WithLevel(level).
		Str("event", "file").
		Str("run_id", j.runID).
		Int("index", idx).
		Int("total", total).
		Str("input", o.InputPath).
		Str("status", o.Status).
		Dur("duration", o.Duration)
	if o.Kind != "" {
		ev = ev.Str("kind", string(o.Kind))
	}
	if o.MIME != "" {
		ev = ev.Str("mime", o.MIME)
	}
	if o.OutputPath != "" {
		ev = ev.Str("output", o.OutputPath)
	}
	if o.Published != "" {
		ev = ev.Str("published", o.Published)
	}
	if o.Failed() {
		ev = ev.Str("reason", o.Reason).
			Str("error_kind", string(o.ErrorKind)).
			Str("error_code", o.ErrorCode)
	}
	ev.Send()
}

func (j *Journal) OnFinish(r *batch.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.log.Info().
		Str("event", "finish").
		Str("run_id", r.RunID).
		Bool("dry_run", r.DryRun).
		Int("total", r.Summary.Total).
		Int("succeeded", r.Summary.Succeeded).
		Int("failed", r.Summary.Failed).
		Int("planned", r.Summary.Planned).
		Dur("elapsed", r.Elapsed()).
		Time("finished_at", r.FinishedAt).
		Send()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
}
