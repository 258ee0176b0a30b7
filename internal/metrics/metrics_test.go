package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/logomark/internal/batch"
	"github.com/abdul-hamid-achik/logomark/internal/media"
	"github.com/abdul-hamid-achik/logomark/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Observer(t *testing.T) {
	rec := NewRecorder()

	rec.OnStart("run", 3)
	rec.OnFileDone(1, 3, batch.Outcome{Kind: media.KindImage, Status: batch.StatusSuccess, Duration: 20 * time.Millisecond})
	rec.OnFileDone(2, 3, batch.Outcome{Kind: media.KindVideo, Status: batch.StatusFailed, Duration: time.Second})
	rec.OnFileDone(3, 3, batch.Outcome{Status: batch.StatusFailed, Reason: batch.ReasonCancelled})

	finished := time.Unix(1_700_000_000, 0)
	rec.OnFinish(&batch.Report{
		StartedAt:  finished.Add(-3 * time.Second),
		FinishedAt: finished,
		Summary:    batch.Summary{Total: 3, Succeeded: 1, Failed: 2},
	})

	if got := testutil.ToFloat64(rec.FilesProcessed.WithLabelValues("image", "success")); got != 1 {
		t.Errorf("image success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.FilesProcessed.WithLabelValues("unknown", "failed")); got != 1 {
		t.Errorf("unknown failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.BatchFiles.WithLabelValues("failed")); got != 2 {
		t.Errorf("batch failed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.LastRun); got != 1_700_000_000 {
		t.Errorf("last run = %v", got)
	}
	if got := testutil.ToFloat64(rec.BatchDuration); got != 3 {
		t.Errorf("batch duration = %v, want 3", got)
	}
	if n := testutil.CollectAndCount(rec.FileDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestRecorder_Isolated(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.OnFileDone(1, 1, batch.Outcome{Kind: media.KindImage, Status: batch.StatusSuccess})

	if got := testutil.ToFloat64(b.FilesProcessed.WithLabelValues("image", "success")); got != 0 {
		t.Errorf("recorders share state: %v", got)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.OnFileDone(1, 1, batch.Outcome{Kind: media.KindImage, Status: batch.StatusSuccess, Duration: time.Millisecond})

	path := filepath.Join(t.TempDir(), "textfile", "logomark.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `logomark_files_processed_total{kind="image",status="success"} 1`) {
		t.Errorf("textfile missing counter:\n%s", data)
	}
}

func TestInstrumentedStorage(t *testing.T) {
	rec := NewRecorder()
	s := NewInstrumentedStorage(storage.NewMemoryStorage(), rec)
	ctx := context.Background()

	if err := s.Upload(ctx, "a.png", strings.NewReader("abcd"), "image/png", 4); err != nil {
		t.Fatal(err)
	}
	_ = s.Upload(ctx, "", strings.NewReader("x"), "", 1)
	_, _ = s.Exists(ctx, "a.png")

	if got := testutil.ToFloat64(rec.StorageOperationsTotal.WithLabelValues("upload", "success")); got != 1 {
		t.Errorf("upload success = %v", got)
	}
	if got := testutil.ToFloat64(rec.StorageOperationsTotal.WithLabelValues("upload", "error")); got != 1 {
		t.Errorf("upload error = %v", got)
	}
	if got := testutil.ToFloat64(rec.StorageBytesTotal); got != 4 {
		t.Errorf("bytes = %v, want 4", got)
	}
	if got := s.URL("a.png"); got != "mem://a.png" {
		t.Errorf("URL() = %q", got)
	}
}
