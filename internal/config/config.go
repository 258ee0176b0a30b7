package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/processor"
	"github.com/abdul-hamid-achik/logomark/internal/processor/overlay"
	"github.com/abdul-hamid-achik/logomark/internal/processor/video"
	"github.com/abdul-hamid-achik/logomark/internal/storage"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ScaleFraction float64 `yaml:"scale_fraction"`
	MarginPx      int     `yaml:"margin_px"`

	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	LogoPath  string `yaml:"logo_path"`
	Parallel  int    `yaml:"parallel"`

	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	Journal     string `yaml:"journal,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`

	Video   VideoConfig    `yaml:"video"`
	Publish storage.Config `yaml:"publish"`
	Tracing TracingConfig  `yaml:"tracing"`
}

type VideoConfig struct {
	FFmpegPath   string `yaml:"ffmpeg_path"`
	FFprobePath  string `yaml:"ffprobe_path"`
	Preset       string `yaml:"preset"`
	CRF          int    `yaml:"crf"`
	AudioBitrate string `yaml:"audio_bitrate"`
	MaxDuration  int    `yaml:"max_duration"` // seconds, 0 = unlimited
	TempDir      string `yaml:"temp_dir,omitempty"`
}

type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint,omitempty"`
	SampleRate float64 `yaml:"sample_rate"`
}

const (
	DefaultInputDir  = "stories"
	DefaultOutputDir = "stories_processed"
	DefaultLogoPath  = "logo.png"
	DefaultParallel  = 1
)

var validPresets = map[string]bool{
	"ultrafast": true, "superfast": true, "veryfast": true, "faster": true, "fast": true,
	"medium": true, "slow": true, "slower": true, "veryslow": true,
}

func Default() *Config {
	vc := video.DefaultVideoConfig()
	return &Config{
		ScaleFraction: overlay.DefaultScaleFraction,
		MarginPx:      overlay.DefaultMarginPx,
		InputDir:      DefaultInputDir,
		OutputDir:     DefaultOutputDir,
		LogoPath:      DefaultLogoPath,
		Parallel:      DefaultParallel,
		LogLevel:      "info",
		LogFormat:     "text",
		Video: VideoConfig{
			FFmpegPath:   vc.FFmpegPath,
			FFprobePath:  vc.FFprobePath,
			Preset:       vc.Preset,
			CRF:          vc.CRF,
			AudioBitrate: vc.AudioBitrate,
		},
		Publish: storage.Config{
			Region: "us-east-1",
		},
		Tracing: TracingConfig{
			Endpoint:   "localhost:4317",
			SampleRate: 1.0,
		},
	}
}

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "logomark"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load builds the effective configuration: defaults, then the YAML file,
// then LOGOMARK_* environment variables. An empty path means the default
// location, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, apperror.Configuration(err, fmt.Sprintf("invalid config file %s", path))
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, apperror.Configuration(err, fmt.Sprintf("cannot read config file %s", path))
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) Policy() overlay.Policy {
	return overlay.Policy{ScaleFraction: c.ScaleFraction, MarginPx: c.MarginPx}
}

// VideoSettings converts the video section into compositor settings.
func (c *Config) VideoSettings() *video.VideoConfig {
	vc := video.DefaultVideoConfig()
	vc.Config = &processor.Config{Policy: c.Policy(), TempDir: c.Video.TempDir}
	vc.FFmpegPath = c.Video.FFmpegPath
	vc.FFprobePath = c.Video.FFprobePath
	vc.Preset = c.Video.Preset
	vc.CRF = c.Video.CRF
	vc.AudioBitrate = c.Video.AudioBitrate
	vc.MaxDuration = c.Video.MaxDuration
	return vc
}

func (c *Config) Validate() error {
	if err := c.Policy().Validate(); err != nil {
		return err
	}

	var problems []string
	if c.Parallel < 1 {
		problems = append(problems, fmt.Sprintf("parallel must be at least 1, got %d", c.Parallel))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		problems = append(problems, "output_dir is required")
	}
	if strings.TrimSpace(c.LogoPath) == "" {
		problems = append(problems, "logo_path is required")
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		problems = append(problems, fmt.Sprintf("video.crf must be in [0,51], got %d", c.Video.CRF))
	}
	if !validPresets[c.Video.Preset] {
		problems = append(problems, fmt.Sprintf("video.preset %q is not an x264 preset", c.Video.Preset))
	}
	if c.Video.MaxDuration < 0 {
		problems = append(problems, "video.max_duration must not be negative")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 || math.IsNaN(c.Tracing.SampleRate) {
		problems = append(problems, fmt.Sprintf("tracing.sample_rate must be in [0,1], got %v", c.Tracing.SampleRate))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format must be text or json, got %q", c.LogFormat))
	}

	if len(problems) > 0 {
		return apperror.Configuration(errors.New(strings.Join(problems, "; ")), "invalid configuration")
	}
	return nil
}
