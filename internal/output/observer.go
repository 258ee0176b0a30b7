package output

import (
	"path/filepath"
	"sync"

	"github.com/abdul-hamid-achik/logomark/internal/batch"
)

var _ batch.Observer = (*BatchObserver)(nil)

// BatchObserver renders batch progress for a terminal: a progress bar on
// the error stream plus one line per finished file.
type BatchObserver struct {
	p           *Printer
	showBar     bool
	progressOut ProgressOption

	mu       sync.Mutex
	progress *Progress
}

func NewBatchObserver(p *Printer, showBar bool) *BatchObserver {
	return &BatchObserver{
		p:           p,
		showBar:     showBar,
		progressOut: ProgressWithOutput(p.ErrOut()),
	}
}

func (o *BatchObserver) OnStart(runID string, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	quiet := o.p.IsQuiet() || o.p.IsJSON() || !o.showBar
	o.progress = NewProgress(total, "watermarking", ProgressWithQuiet(quiet), o.progressOut)
}

func (o *BatchObserver) OnFileDone(idx, total int, out batch.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()

	name := filepath.Base(out.InputPath)
	switch out.Status {
	case batch.StatusFailed:
		o.p.FileFailed(name, out.Reason)
	case batch.StatusPlanned:
		o.p.Info("%s (%s) would be written to %s", name, out.Kind, out.OutputPath)
	default:
		if !o.showBar {
			o.p.FileDone(name, out.OutputPath, out.Published)
		}
	}
	if o.progress != nil {
		o.progress.Describe(name)
		o.progress.Increment()
	}
}

func (o *BatchObserver) OnFinish(r *batch.Report) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress != nil {
		o.progress.Finish()
	}
	if r.DryRun {
		o.p.Info("dry run: %d file(s) planned, %d failed", r.Summary.Planned, r.Summary.Failed)
		return
	}
	o.p.Summary(r.Summary.Succeeded, r.Summary.Failed, r.Elapsed())
}
