package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
)

// fakeMP4 is an ftyp box header; no image decoder claims it.
var fakeMP4 = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom\x00\x00\x00\x08free")

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(255 * x / w), G: uint8(255 * y / h), B: 128, A: 255})
		}
	}
	return img
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func encode(t *testing.T, format string, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		file       string
		data       []byte
		wantKind   Kind
		wantFormat string
		wantW      int
		wantH      int
	}{
		{"png", "a.png", encode(t, "png", testImage(120, 80)), KindImage, "png", 120, 80},
		{"jpeg", "b.jpg", encode(t, "jpeg", testImage(64, 48)), KindImage, "jpeg", 64, 48},
		{"gif", "c.gif", encode(t, "gif", testImage(10, 20)), KindImage, "gif", 10, 20},
		{"jpeg with misleading extension", "d.mp4", encode(t, "jpeg", testImage(32, 32)), KindImage, "jpeg", 32, 32},
		{"mp4", "e.mp4", fakeMP4, KindVideo, "", 0, 0},
		{"unknown binary", "f.bin", []byte("plain text is not an image"), KindVideo, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.data)

			desc, err := Probe(path)
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if desc.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", desc.Kind, tt.wantKind)
			}
			if desc.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", desc.Format, tt.wantFormat)
			}
			if desc.Width != tt.wantW || desc.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", desc.Width, desc.Height, tt.wantW, tt.wantH)
			}
			if desc.Size != int64(len(tt.data)) {
				t.Errorf("Size = %d, want %d", desc.Size, len(tt.data))
			}
			if desc.MIME == "" {
				t.Error("MIME should be detected")
			}
		})
	}
}

func TestProbe_Errors(t *testing.T) {
	dir := t.TempDir()

	truncated := writeFile(t, dir, "broken.jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46})
	empty := writeFile(t, dir, "empty.png", nil)
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want *apperror.Error
	}{
		{"truncated jpeg", truncated, apperror.ErrCorrupted},
		{"empty file", empty, apperror.ErrCorrupted},
		{"missing file", filepath.Join(dir, "nope.png"), apperror.ErrUnreadable},
		{"directory", sub, apperror.ErrUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Probe(tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !apperror.Is(err, tt.want) {
				t.Errorf("error = %v, want code %s", err, tt.want.Code)
			}
			if apperror.KindOf(err) != apperror.KindDecode {
				t.Errorf("kind = %s, want decode", apperror.KindOf(err))
			}
		})
	}
}

func TestProbe_Deterministic(t *testing.T) {
	dir := t.TempDir()
	img := writeFile(t, dir, "a.png", encode(t, "png", testImage(16, 16)))
	vid := writeFile(t, dir, "b.mp4", fakeMP4)

	for _, path := range []string{img, vid} {
		first, err := Probe(path)
		if err != nil {
			t.Fatalf("Probe(%s) error = %v", path, err)
		}
		for i := 0; i < 5; i++ {
			got, err := Probe(path)
			if err != nil {
				t.Fatalf("Probe(%s) error = %v", path, err)
			}
			if got != first {
				t.Fatalf("Probe(%s) = %+v, want %+v", path, got, first)
			}
		}
	}
}

func TestFileProber_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (FileProber{}).Probe(ctx, "whatever.png"); err == nil {
		t.Error("expected context error")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		want  string
	}{
		{"stories/a.jpg", KindImage, filepath.Join("out", "a.png")},
		{"stories/a.webp", KindImage, filepath.Join("out", "a.png")},
		{"stories/a.PNG", KindImage, filepath.Join("out", "a.png")},
		{"stories/noext", KindImage, filepath.Join("out", "noext.png")},
		{"stories/clip.mov", KindVideo, filepath.Join("out", "clip.mp4")},
		{"stories/clip.mp4", KindVideo, filepath.Join("out", "clip.mp4")},
		{"stories/my.story.v2.jpg", KindImage, filepath.Join("out", "my.story.v2.png")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := OutputPath("out", tt.input, tt.kind); got != tt.want {
				t.Errorf("OutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
