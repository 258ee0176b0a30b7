package image

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/media"
	"github.com/abdul-hamid-achik/logomark/internal/processor"
	"github.com/abdul-hamid-achik/logomark/internal/processor/overlay"
)

var blue = color.RGBA{B: 255, A: 255}

func TestWatermarkCompositor_Name(t *testing.T) {
	c := NewWatermarkCompositor(nil)
	if got := c.Name(); got != "image" {
		t.Errorf("Name() = %v, want image", got)
	}
}

func TestComposite(t *testing.T) {
	logo := createTestLogo(t, 400, 200)
	target := createSolidColorImage(300, 300, blue)

	out, pl := Composite(target, logo, overlay.DefaultPolicy())

	want := overlay.Placement{Width: 100, Height: 50, X: 170, Y: 220}
	if pl != want {
		t.Fatalf("placement = %+v, want %+v", pl, want)
	}
	if out.Bounds().Dx() != 300 || out.Bounds().Dy() != 300 {
		t.Fatalf("output size = %v, want 300x300", out.Bounds())
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"outside overlay top-left", 0, 0, blue},
		{"outside overlay in margin", 295, 295, blue},
		{"just left of overlay", pl.X - 1, pl.Y + 25, blue},
		{"opaque logo region", pl.X + 10, pl.Y + 25, color.RGBA{R: 255, A: 255}},
		{"transparent logo region", pl.X + 80, pl.Y + 25, blue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := out.RGBAAt(tt.x, tt.y)
			if !closeEnough(got.R, tt.want.R) || !closeEnough(got.G, tt.want.G) ||
				!closeEnough(got.B, tt.want.B) || !closeEnough(got.A, tt.want.A) {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	if logo.Width() != 400 || logo.Height() != 200 {
		t.Errorf("logo mutated to %dx%d", logo.Width(), logo.Height())
	}
	if c := target.At(pl.X+10, pl.Y+25); c != color.Color(blue) {
		t.Errorf("target mutated at overlay: %v", c)
	}
}

func TestComposite_PartialAlphaBlends(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 128})
		}
	}
	logo, err := overlay.NewLogo("half.png", img)
	if err != nil {
		t.Fatal(err)
	}

	out, pl := Composite(createSolidColorImage(120, 120, blue), logo, overlay.Policy{ScaleFraction: 0.5, MarginPx: 10})

	got := out.RGBAAt(pl.X+pl.Width/2, pl.Y+pl.Height/2)
	if !closeEnough(got.R, 128) || !closeEnough(got.B, 127) || got.A != 255 {
		t.Errorf("blended pixel = %v, want ~{128 0 127 255}", got)
	}
}

func TestComposite_AddsOpaqueAlpha(t *testing.T) {
	logo := createTestLogo(t, 400, 200)
	target := image.NewGray(image.Rect(0, 0, 60, 60))
	for i := range target.Pix {
		target.Pix[i] = 200
	}

	out, _ := Composite(target, logo, overlay.DefaultPolicy())

	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 200, G: 200, B: 200, A: 255}) {
		t.Errorf("pixel = %v, want opaque gray", got)
	}
}

func TestComposite_NonZeroOrigin(t *testing.T) {
	logo := createTestLogo(t, 400, 200)
	full := createSolidColorImage(400, 400, blue).(*image.RGBA)
	sub := full.SubImage(image.Rect(100, 100, 400, 400))

	out, pl := Composite(sub, logo, overlay.DefaultPolicy())

	if out.Bounds().Min != (image.Point{}) {
		t.Errorf("output origin = %v, want 0,0", out.Bounds().Min)
	}
	if pl.X != 170 || pl.Y != 220 {
		t.Errorf("placement = %+v, want origin 170,220", pl)
	}
}

func TestWatermarkCompositor_Render(t *testing.T) {
	dir := t.TempDir()
	logo := createTestLogo(t, 400, 200)
	c := NewWatermarkCompositor(processor.DefaultConfig())

	tests := []struct {
		name       string
		file       string
		data       []byte
		output     string
		wantOutput string
		wantW      int
		wantH      int
	}{
		{
			name:       "jpeg becomes png",
			file:       "story.jpg",
			data:       encodeTestJPEG(createTestImage(1200, 1800), 85),
			output:     filepath.Join(dir, "out", "story.jpg"),
			wantOutput: filepath.Join(dir, "out", "story.png"),
			wantW:      1200,
			wantH:      1800,
		},
		{
			name:       "png stays png",
			file:       "frame.png",
			data:       encodeTestPNG(createTestImage(300, 300)),
			output:     filepath.Join(dir, "out", "frame.png"),
			wantOutput: filepath.Join(dir, "out", "frame.png"),
			wantW:      300,
			wantH:      300,
		},
		{
			name:       "webp extension is normalised",
			file:       "post.webp",
			data:       encodeTestJPEG(createTestImage(200, 100), 90),
			output:     filepath.Join(dir, "deep", "nested", "post.webp"),
			wantOutput: filepath.Join(dir, "deep", "nested", "post.png"),
			wantW:      200,
			wantH:      100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeTestFile(t, dir, tt.file, tt.data)
			desc, err := media.Probe(input)
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}

			got, err := c.Render(context.Background(), desc, logo, tt.output)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.wantOutput {
				t.Errorf("Render() path = %q, want %q", got, tt.wantOutput)
			}

			img, format := readImageFile(t, got)
			if format != "png" {
				t.Errorf("output format = %q, want png", format)
			}
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Errorf("output size = %v, want %dx%d", img.Bounds(), tt.wantW, tt.wantH)
			}

			if _, err := os.Stat(input); err != nil {
				t.Errorf("input should be untouched: %v", err)
			}
		})
	}
}

func TestWatermarkCompositor_RenderErrors(t *testing.T) {
	dir := t.TempDir()
	logo := createTestLogo(t, 400, 200)
	c := NewWatermarkCompositor(nil)

	corrupted := writeTestFile(t, dir, "broken.jpg", createCorruptedJPEG())
	out := filepath.Join(dir, "out", "broken.png")

	_, err := c.Render(context.Background(), media.Descriptor{Path: corrupted, Kind: media.KindImage}, logo, out)
	if err == nil {
		t.Fatal("expected error for corrupted input")
	}
	if apperror.KindOf(err) != apperror.KindDecode {
		t.Errorf("kind = %s, want decode", apperror.KindOf(err))
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output should be written for a failed render")
	}

	_, err = c.Render(context.Background(), media.Descriptor{Path: filepath.Join(dir, "missing.png")}, logo, out)
	if !apperror.Is(err, apperror.ErrUnreadable) {
		t.Errorf("missing input error = %v, want unreadable", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Render(ctx, media.Descriptor{Path: corrupted}, logo, out); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestWatermarkCompositor_RenderUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	logo := createTestLogo(t, 40, 20)
	c := NewWatermarkCompositor(nil)

	input := writeTestFile(t, dir, "a.png", encodeTestPNG(createTestImage(50, 50)))
	blocker := writeTestFile(t, dir, "blocker", []byte("file in the way"))

	_, err := c.Render(context.Background(), media.Descriptor{Path: input}, logo, filepath.Join(blocker, "a.png"))
	if apperror.KindOf(err) != apperror.KindEncode {
		t.Errorf("error = %v, want encode kind", err)
	}
}
