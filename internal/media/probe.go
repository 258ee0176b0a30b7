// Package media classifies target files as still images or videos.
package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Prober classifies a single file.
type Prober interface {
	Probe(ctx context.Context, path string) (Descriptor, error)
}

// FileProber decodes files from the local filesystem.
type FileProber struct{}

var _ Prober = FileProber{}

func (FileProber) Probe(ctx context.Context, path string) (Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return Descriptor{}, err
	}
	return Probe(path)
}

// Probe attempts to decode path as a still image. A successful decode yields
// KindImage. A file whose format no image decoder recognises is assumed to
// be a video and is not validated further here. Any other failure (open
// error, truncated or corrupt image data) is returned as a decode error.
func Probe(path string) (Descriptor, error) {
	desc := Descriptor{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return desc, apperror.WrapPath(err, apperror.ErrUnreadable, path)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return desc, apperror.WrapPath(err, apperror.ErrUnreadable, path)
	}
	if !info.Mode().IsRegular() {
		return desc, apperror.WrapPath(fmt.Errorf("not a regular file"), apperror.ErrUnreadable, path)
	}
	if info.Size() == 0 {
		return desc, apperror.WrapPath(errors.New("empty file"), apperror.ErrCorrupted, path)
	}
	desc.Size = info.Size()

	if mt, err := mimetype.DetectReader(f); err == nil {
		desc.MIME = mt.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return desc, apperror.WrapPath(err, apperror.ErrUnreadable, path)
	}

	img, format, err := image.Decode(bufio.NewReader(f))
	switch {
	case err == nil:
		b := img.Bounds()
		desc.Kind = KindImage
		desc.Format = format
		desc.Width = b.Dx()
		desc.Height = b.Dy()
		return desc, nil
	case errors.Is(err, image.ErrFormat):
		desc.Kind = KindVideo
		return desc, nil
	default:
		return desc, apperror.Decode(err, path)
	}
}
