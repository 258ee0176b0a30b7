package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/media"
	"github.com/abdul-hamid-achik/logomark/internal/processor/overlay"
)

// Compositor draws the logo onto one target and writes the result.
// Render returns the path actually written, which may differ from
// outputPath in its extension.
type Compositor interface {
	Render(ctx context.Context, desc media.Descriptor, logo *overlay.Logo, outputPath string) (string, error)
	Name() string
}

type Config struct {
	Policy  overlay.Policy
	TempDir string
}

func DefaultConfig() *Config {
	return &Config{
		Policy:  overlay.DefaultPolicy(),
		TempDir: os.TempDir(),
	}
}

// WriteFileAtomic creates the parent directories of path, streams write into
// a temporary file next to it and renames it into place. A failed write
// never leaves a partial output behind.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperror.Encode(fmt.Errorf("create output dir: %w", err), path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperror.Encode(fmt.Errorf("create temp file: %w", err), path)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return apperror.Encode(err, path)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return apperror.Encode(fmt.Errorf("sync: %w", err), path)
	}
	if err := tmp.Close(); err != nil {
		return apperror.Encode(fmt.Errorf("close: %w", err), path)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return apperror.Encode(fmt.Errorf("chmod: %w", err), path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperror.Encode(fmt.Errorf("rename: %w", err), path)
	}
	return nil
}

// MoveIntoPlace renames a finished temporary file to path, creating parent
// directories first.
func MoveIntoPlace(tmpPath, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperror.Encode(fmt.Errorf("create output dir: %w", err), path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperror.Encode(fmt.Errorf("rename: %w", err), path)
	}
	return nil
}
