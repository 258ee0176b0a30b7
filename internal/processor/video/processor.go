package video

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/abdul-hamid-achik/logomark/internal/processor"
)

var (
	ErrVideoTooLong    = errors.New("video: duration exceeds limit")
	ErrFFmpegNotFound  = errors.New("video: ffmpeg not found in PATH")
	ErrFFprobeNotFound = errors.New("video: ffprobe not found in PATH")
	ErrNoVideoStream   = errors.New("video: no video stream")
)

// VideoMetadata contains the stream information needed to place the overlay
// and choose encoder settings.
type VideoMetadata struct {
	Duration   float64 `json:"duration"`    // Duration in seconds
	Width      int     `json:"width"`       // Video width
	Height     int     `json:"height"`      // Video height
	Bitrate    int64   `json:"bitrate"`     // Total bitrate in bits/s
	VideoCodec string  `json:"video_codec"` // e.g., h264, vp9, hevc
	AudioCodec string  `json:"audio_codec"` // e.g., aac, opus, mp3
	FrameRate  float64 `json:"frame_rate"`  // Frames per second
	FileSize   int64   `json:"file_size"`   // File size in bytes
	Container  string  `json:"container"`   // e.g., mp4, webm, mkv
	HasAudio   bool    `json:"has_audio"`   // Whether video has audio track
	Rotation   int     `json:"rotation"`    // Display rotation in degrees, normalized to [0,360)
}

// VideoConfig holds configuration for the ffmpeg compositor
type VideoConfig struct {
	*processor.Config

	// FFmpeg settings
	FFmpegPath  string // Path to ffmpeg binary (default: "ffmpeg")
	FFprobePath string // Path to ffprobe binary (default: "ffprobe")

	// Encoding settings
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string

	// Limits
	MaxDuration int // Maximum video duration in seconds, 0 disables the check
}

// DefaultVideoConfig returns default video configuration
func DefaultVideoConfig() *VideoConfig {
	return &VideoConfig{
		Config:       processor.DefaultConfig(),
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		VideoCodec:   "libx264",
		Preset:       "medium",
		CRF:          23,
		AudioCodec:   "aac",
		AudioBitrate: "128k",
	}
}

// CommandRunner runs an external tool and returns its stdout and stderr.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Supported video content types
var SupportedVideoTypes = []string{
	"video/mp4",
	"video/webm",
	"video/quicktime",
	"video/x-msvideo",
	"video/x-matroska",
	"video/mpeg",
	"video/ogg",
	"video/3gpp",
	"video/3gpp2",
	"video/x-m4v",
	"video/x-flv",
}

// IsVideoType checks if the content type is a known video type. Parameters
// such as "; charset=" are ignored.
func IsVideoType(contentType string) bool {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)
	for _, t := range SupportedVideoTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// tail returns the last n bytes of ffmpeg stderr, which is where the
// actual error message ends up.
func tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
