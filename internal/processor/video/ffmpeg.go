package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/logger"
	"github.com/abdul-hamid-achik/logomark/internal/media"
	"github.com/abdul-hamid-achik/logomark/internal/processor"
	"github.com/abdul-hamid-achik/logomark/internal/processor/overlay"
	"github.com/disintegration/imaging"
)

// FFmpegCompositor burns a static logo into every frame of a video and
// re-encodes it to H.264/AAC in an MP4 container.
type FFmpegCompositor struct {
	config *VideoConfig
	runner CommandRunner
}

var _ processor.Compositor = (*FFmpegCompositor)(nil)

type Option func(*FFmpegCompositor)

// WithRunner replaces the command runner, mainly for tests.
func WithRunner(r CommandRunner) Option {
	return func(c *FFmpegCompositor) {
		c.runner = r
	}
}

// NewFFmpegCompositor creates the compositor. Missing binaries are not an
// error here: an image-only batch never needs them. Use Available to check.
func NewFFmpegCompositor(cfg *VideoConfig, opts ...Option) *FFmpegCompositor {
	if cfg == nil {
		cfg = DefaultVideoConfig()
	}
	if cfg.Config == nil {
		cfg.Config = processor.DefaultConfig()
	}
	c := &FFmpegCompositor{config: cfg, runner: ExecRunner{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FFmpegCompositor) Name() string {
	return "video"
}

// Available reports whether ffmpeg and ffprobe can be found.
func (c *FFmpegCompositor) Available() error {
	if _, err := c.runner.LookPath(c.config.FFmpegPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	if _, err := c.runner.LookPath(c.config.FFprobePath); err != nil {
		return fmt.Errorf("%w: %v", ErrFFprobeNotFound, err)
	}
	return nil
}

// FFmpegVersion returns the first line of `ffmpeg -version`.
func (c *FFmpegCompositor) FFmpegVersion(ctx context.Context) (string, error) {
	return c.toolVersion(ctx, c.config.FFmpegPath, ErrFFmpegNotFound)
}

// FFprobeVersion returns the first line of `ffprobe -version`.
func (c *FFmpegCompositor) FFprobeVersion(ctx context.Context) (string, error) {
	return c.toolVersion(ctx, c.config.FFprobePath, ErrFFprobeNotFound)
}

func (c *FFmpegCompositor) toolVersion(ctx context.Context, tool string, notFound error) (string, error) {
	path, err := c.runner.LookPath(tool)
	if err != nil {
		return "", fmt.Errorf("%w: %v", notFound, err)
	}
	stdout, stderr, err := c.runner.Run(ctx, path, "-version")
	if err != nil {
		return path, fmt.Errorf("%s -version: %w: %s", tool, err, tail(stderr, 256))
	}
	line, _, _ := strings.Cut(string(stdout), "\n")
	return strings.TrimSpace(line), nil
}

// Render reads the clip's dimensions and duration, sizes the logo once for
// the whole clip and overlays it at a fixed position. The input file is
// never modified; the output is written beside outputPath and renamed into
// place when ffmpeg succeeds.
func (c *FFmpegCompositor) Render(ctx context.Context, desc media.Descriptor, logo *overlay.Logo, outputPath string) (string, error) {
	log := logger.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := c.Available(); err != nil {
		return "", apperror.WrapPath(err, apperror.ErrTranscodeFailed, desc.Path)
	}

	metadata, err := c.GetMetadata(ctx, desc.Path)
	if err != nil {
		return "", apperror.WrapPath(err, apperror.ErrVideoProbe, desc.Path)
	}
	if metadata.Width <= 0 || metadata.Height <= 0 {
		return "", apperror.WrapPath(ErrNoVideoStream, apperror.ErrVideoProbe, desc.Path)
	}
	if c.config.MaxDuration > 0 && metadata.Duration > float64(c.config.MaxDuration) {
		err := fmt.Errorf("%w: video is %.0fs, max is %ds", ErrVideoTooLong, metadata.Duration, c.config.MaxDuration)
		return "", apperror.WrapPath(err, apperror.ErrVideoProbe, desc.Path)
	}
	if desc.MIME != "" && !IsVideoType(desc.MIME) {
		log.Warn("treating non-image file as video", "path", desc.Path, "mime", desc.MIME)
	}

	pl := logo.Place(metadata.Width, metadata.Height, c.config.Policy)

	tempDir, err := c.createTempDir("overlay")
	if err != nil {
		return "", apperror.WrapPath(err, apperror.ErrTranscodeFailed, desc.Path)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	logoPath := filepath.Join(tempDir, "logo.png")
	if err := imaging.Save(logo.Resized(pl), logoPath); err != nil {
		return "", apperror.WrapPath(fmt.Errorf("write overlay: %w", err), apperror.ErrTranscodeFailed, desc.Path)
	}

	outputPath = media.ForceExt(outputPath, media.KindVideo.OutputExt())
	outDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", apperror.Encode(fmt.Errorf("create output dir: %w", err), outputPath)
	}

	tmp, err := os.CreateTemp(outDir, "."+strings.TrimSuffix(filepath.Base(outputPath), ".mp4")+".tmp-*.mp4")
	if err != nil {
		return "", apperror.Encode(fmt.Errorf("create temp output: %w", err), outputPath)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	args := c.buildOverlayArgs(metadata, pl, desc.Path, logoPath, tmpPath)

	log.Debug("running ffmpeg", "path", desc.Path, "placement", pl.String(), "duration", metadata.Duration)
	_, stderr, err := c.runner.Run(ctx, c.config.FFmpegPath, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperror.WrapPath(fmt.Errorf("ffmpeg failed: %v, output: %s", err, tail(stderr, 512)), apperror.ErrTranscodeFailed, desc.Path)
	}

	if err := processor.MoveIntoPlace(tmpPath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}

// Describe completes a descriptor with the clip's stream information.
func (c *FFmpegCompositor) Describe(ctx context.Context, desc media.Descriptor) (media.Descriptor, error) {
	metadata, err := c.GetMetadata(ctx, desc.Path)
	if err != nil {
		return desc, apperror.WrapPath(err, apperror.ErrVideoProbe, desc.Path)
	}
	desc.Width = metadata.Width
	desc.Height = metadata.Height
	desc.Duration = metadata.Duration
	desc.FrameRate = metadata.FrameRate
	desc.HasAudio = metadata.HasAudio
	desc.VideoCodec = metadata.VideoCodec
	desc.AudioCodec = metadata.AudioCodec
	return desc, nil
}

func (c *FFmpegCompositor) buildOverlayArgs(metadata *VideoMetadata, pl overlay.Placement, inputPath, logoPath, outputPath string) []string {
	args := []string{"-hide_banner", "-nostdin", "-y", "-i", inputPath}

	// The logo is a looped still held for exactly the clip's duration.
	args = append(args, "-loop", "1")
	if metadata.Duration > 0 {
		args = append(args, "-t", strconv.FormatFloat(metadata.Duration, 'f', 3, 64))
	}
	args = append(args, "-i", logoPath)

	filter := fmt.Sprintf("[1:v]format=rgba[logo];[0:v][logo]overlay=%d:%d:shortest=1:format=auto", pl.X, pl.Y)
	if metadata.Width%2 != 0 || metadata.Height%2 != 0 {
		// yuv420p needs even dimensions
		filter += ",pad=ceil(iw/2)*2:ceil(ih/2)*2"
	}
	filter += ",format=yuv420p[out]"

	args = append(args, "-filter_complex", filter, "-map", "[out]")

	args = append(args,
		"-c:v", c.config.VideoCodec,
		"-preset", c.config.Preset,
		"-crf", strconv.Itoa(c.config.CRF),
	)

	if metadata.HasAudio {
		args = append(args,
			"-map", "0:a:0",
			"-c:a", c.config.AudioCodec,
			"-b:a", c.config.AudioBitrate,
		)
	} else {
		args = append(args, "-an")
	}

	args = append(args, "-movflags", "+faststart", "-f", "mp4", outputPath)

	return args
}

func (c *FFmpegCompositor) createTempDir(prefix string) (string, error) {
	tempDir, err := os.MkdirTemp(c.config.TempDir, fmt.Sprintf("logomark-%s-*", prefix))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			tempDir, err = os.MkdirTemp("", fmt.Sprintf("logomark-%s-*", prefix))
			if err != nil {
				return "", fmt.Errorf("failed to create temp dir: %w", err)
			}
		} else {
			return "", fmt.Errorf("failed to create temp dir: %w", err)
		}
	}
	return tempDir, nil
}

// ffprobeOutput represents the JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		BitRate    string `json:"bit_rate"`
		Tags       struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []struct {
			SideDataType string  `json:"side_data_type"`
			Rotation     float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		BitRate  string `json:"bit_rate"`
		Name     string `json:"format_name"`
	} `json:"format"`
}

// GetMetadata extracts metadata from a video file with ffprobe
func (c *FFmpegCompositor) GetMetadata(ctx context.Context, path string) (*VideoMetadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	output, _, err := c.runner.Run(ctx, c.config.FFprobePath, args...)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (*VideoMetadata, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	metadata := &VideoMetadata{}

	if probe.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			metadata.Duration = d
		}
	}

	if probe.Format.Size != "" {
		if s, err := strconv.ParseInt(probe.Format.Size, 10, 64); err == nil {
			metadata.FileSize = s
		}
	}

	if probe.Format.BitRate != "" {
		if b, err := strconv.ParseInt(probe.Format.BitRate, 10, 64); err == nil {
			metadata.Bitrate = b
		}
	}

	metadata.Container = strings.Split(probe.Format.Name, ",")[0]

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			// First video stream wins; attached cover art comes later.
			if metadata.VideoCodec != "" {
				continue
			}
			metadata.VideoCodec = stream.CodecName
			metadata.Width = stream.Width
			metadata.Height = stream.Height
			metadata.FrameRate = parseFrameRate(stream.RFrameRate)

			// The display matrix wins over the legacy rotate tag.
			rotation := 0.0
			if r, err := strconv.ParseFloat(stream.Tags.Rotate, 64); err == nil {
				rotation = r
			}
			for _, sd := range stream.SideDataList {
				if sd.SideDataType == "Display Matrix" || sd.Rotation != 0 {
					rotation = sd.Rotation
					break
				}
			}
			metadata.Rotation = normalizeRotation(rotation)

			// ffmpeg autorotates before the filter graph, so the overlay sees
			// the displayed frame.
			if metadata.Rotation == 90 || metadata.Rotation == 270 {
				metadata.Width, metadata.Height = metadata.Height, metadata.Width
			}
		case "audio":
			if !metadata.HasAudio {
				metadata.AudioCodec = stream.CodecName
				metadata.HasAudio = true
			}
		}
	}

	return metadata, nil
}

// normalizeRotation maps a rotation in degrees to the nearest quarter turn in
// [0,360).
func normalizeRotation(deg float64) int {
	r := int(math.Round(deg/90)) * 90 % 360
	if r < 0 {
		r += 360
	}
	return r
}

// parseFrameRate parses "30/1" or "30000/1001".
func parseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0
	}
	num, _ := strconv.ParseFloat(parts[0], 64)
	den, _ := strconv.ParseFloat(parts[1], 64)
	if den <= 0 {
		return 0
	}
	return num / den
}
