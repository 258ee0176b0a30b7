package media

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind is the result of classifying a target file. There are exactly two
// variants; anything that is not a recognised still image is a video.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

func (k Kind) String() string { return string(k) }

// Descriptor identifies one target file for the lifetime of its processing.
// Probe fills the image fields; the video compositor completes the video
// fields from ffprobe before rendering.
type Descriptor struct {
	Path   string `json:"path"`
	Kind   Kind   `json:"kind"`
	MIME   string `json:"mime,omitempty"`
	Format string `json:"format,omitempty"`
	Size   int64  `json:"size"`

	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	Duration   float64 `json:"duration,omitempty"`
	FrameRate  float64 `json:"frame_rate,omitempty"`
	HasAudio   bool    `json:"has_audio,omitempty"`
	VideoCodec string  `json:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
}

func (d Descriptor) Name() string {
	return filepath.Base(d.Path)
}

func (d Descriptor) DurationTime() time.Duration {
	return time.Duration(d.Duration * float64(time.Second))
}

// OutputExt is the extension every output of this kind is normalised to.
func (k Kind) OutputExt() string {
	switch k {
	case KindImage:
		return ".png"
	case KindVideo:
		return ".mp4"
	}
	return ""
}

// OutputPath maps an input file to its sibling in outputDir with the
// extension forced to the kind's output format.
func OutputPath(outputDir, inputPath string, kind Kind) string {
	return ForceExt(filepath.Join(outputDir, filepath.Base(inputPath)), kind.OutputExt())
}

// ForceExt swaps the extension of path for ext, appending it if the name has
// no extension.
func ForceExt(path, ext string) string {
	if ext == "" {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
