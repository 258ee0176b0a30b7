package batch

import (
	"sort"
	"time"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/media"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPlanned = "planned"
)

// ReasonCancelled is recorded for files that never ran because the batch
// context was cancelled.
const ReasonCancelled = "cancelled"

// Outcome is the result of processing one input file.
type Outcome struct {
	InputPath  string        `json:"input_path"`
	OutputPath string        `json:"output_path,omitempty"`
	Kind       media.Kind    `json:"kind,omitempty"`
	MIME       string        `json:"mime,omitempty"`
	Status     string        `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	ErrorKind  apperror.Kind `json:"error_kind,omitempty"`
	ErrorCode  string        `json:"error_code,omitempty"`
	Published  string        `json:"published,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

func success(desc media.Descriptor, output string, dur time.Duration) Outcome {
	return Outcome{
		InputPath:  desc.Path,
		OutputPath: output,
		Kind:       desc.Kind,
		MIME:       desc.MIME,
		Status:     StatusSuccess,
		Duration:   dur,
	}
}

func failure(path string, desc media.Descriptor, err error, dur time.Duration) Outcome {
	return Outcome{
		InputPath: path,
		Kind:      desc.Kind,
		MIME:      desc.MIME,
		Status:    StatusFailed,
		Reason:    err.Error(),
		ErrorKind: apperror.KindOf(err),
		ErrorCode: apperror.Code(err),
		Duration:  dur,
	}
}

func cancelled(path string) Outcome {
	return Outcome{
		InputPath: path,
		Status:    StatusFailed,
		Reason:    ReasonCancelled,
		ErrorKind: apperror.KindInternal,
		ErrorCode: apperror.ErrCancelled.Code,
	}
}

type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Planned   int `json:"planned"`
	Images    int `json:"images"`
	Videos    int `json:"videos"`
}

// Report is the result of one batch run.
type Report struct {
	RunID     string `json:"run_id"`
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	DryRun    bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary Summary   `json:"summary"`
	Items   []Outcome `json:"items"`
}

// Finalize sorts the items by input path and recomputes the summary.
func (r *Report) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		return r.Items[i].InputPath < r.Items[j].InputPath
	})

	s := Summary{Total: len(r.Items)}
	for _, it := range r.Items {
		switch it.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusPlanned:
			s.Planned++
		}
		switch it.Kind {
		case media.KindImage:
			s.Images++
		case media.KindVideo:
			s.Videos++
		}
	}
	r.Summary = s
}

func (r *Report) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) HasFailures() bool {
	return r.Summary.Failed > 0
}

func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, it := range r.Items {
		if it.Failed() {
			out = append(out, it)
		}
	}
	return out
}
