package overlay

import (
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/disintegration/imaging"
)

// Logo is the overlay asset for a batch run. It is never mutated after
// loading, so it can be shared by concurrent workers without locking.
type Logo struct {
	path string
	img  *image.NRGBA
}

// LoadLogo decodes the logo at path. Every failure here is a configuration
// error: without a logo there is nothing to watermark with.
func LoadLogo(path string) (*Logo, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.WrapPath(err, apperror.ErrLogoMissing, path)
		}
		return nil, apperror.WrapPath(err, apperror.ErrLogoInvalid, path)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, apperror.WrapPath(err, apperror.ErrLogoInvalid, path)
	}

	return NewLogo(path, img)
}

// NewLogo wraps an already decoded image.
func NewLogo(path string, img image.Image) (*Logo, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, apperror.WrapPath(errors.New("logo has no pixels"), apperror.ErrLogoInvalid, path)
	}
	return &Logo{path: path, img: imaging.Clone(img)}, nil
}

func (l *Logo) Path() string { return l.path }

func (l *Logo) Width() int { return l.img.Bounds().Dx() }

func (l *Logo) Height() int { return l.img.Bounds().Dy() }

// Place computes the placement of this logo on a target of the given size.
func (l *Logo) Place(targetW, targetH int, p Policy) Placement {
	return Compute(targetW, targetH, l.Width(), l.Height(), p)
}

// Resized returns a new buffer holding the logo scaled to the placement size.
func (l *Logo) Resized(pl Placement) *image.NRGBA {
	if pl.Width == l.Width() && pl.Height == l.Height() {
		return imaging.Clone(l.img)
	}
	return imaging.Resize(l.img, pl.Width, pl.Height, imaging.Lanczos)
}
