package image

import (
	"bufio"
	"context"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/media"
	"github.com/abdul-hamid-achik/logomark/internal/processor"
	"github.com/abdul-hamid-achik/logomark/internal/processor/overlay"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var _ processor.Compositor = (*WatermarkCompositor)(nil)

// WatermarkCompositor stamps the logo onto still images. Output is always
// PNG regardless of the source format.
type WatermarkCompositor struct {
	config *processor.Config
}

func NewWatermarkCompositor(cfg *processor.Config) *WatermarkCompositor {
	if cfg == nil {
		cfg = processor.DefaultConfig()
	}
	return &WatermarkCompositor{config: cfg}
}

func (c *WatermarkCompositor) Name() string {
	return "image"
}

func (c *WatermarkCompositor) Render(ctx context.Context, desc media.Descriptor, logo *overlay.Logo, outputPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := decodeFile(desc.Path)
	if err != nil {
		return "", err
	}

	watermarked, _ := Composite(img, logo, c.config.Policy)

	outputPath = media.ForceExt(outputPath, media.KindImage.OutputExt())
	err = processor.WriteFileAtomic(outputPath, func(w io.Writer) error {
		return encodePNG(w, watermarked)
	})
	if err != nil {
		return "", err
	}

	return outputPath, nil
}

// Composite normalises target to RGBA, resizes the logo for it and
// alpha-blends the logo at its bottom-right placement. target and logo are
// left untouched.
func Composite(target image.Image, logo *overlay.Logo, p overlay.Policy) (*image.RGBA, overlay.Placement) {
	b := target.Bounds()
	base := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(base, base.Bounds(), target, b.Min, draw.Src)

	pl := logo.Place(b.Dx(), b.Dy(), p)
	resized := logo.Resized(pl)

	dc := gg.NewContextForRGBA(base)
	dc.DrawImage(resized, pl.X, pl.Y)

	return base, pl
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.WrapPath(err, apperror.ErrUnreadable, path)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, apperror.Decode(err, path)
	}
	return img, nil
}

func encodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}
