package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
)

// Environment variable names for configuration overrides
const (
	EnvScaleFraction    = "LOGOMARK_SCALE_FRACTION"
	EnvMarginPx         = "LOGOMARK_MARGIN_PX"
	EnvInputDir         = "LOGOMARK_INPUT_DIR"
	EnvOutputDir        = "LOGOMARK_OUTPUT_DIR"
	EnvLogoPath         = "LOGOMARK_LOGO_PATH"
	EnvParallel         = "LOGOMARK_PARALLEL"
	EnvLogLevel         = "LOGOMARK_LOG_LEVEL"
	EnvFFmpegPath       = "LOGOMARK_FFMPEG_PATH"
	EnvFFprobePath      = "LOGOMARK_FFPROBE_PATH"
	EnvPublishEndpoint  = "LOGOMARK_PUBLISH_ENDPOINT"
	EnvPublishAccessKey = "LOGOMARK_PUBLISH_ACCESS_KEY"
	EnvPublishSecretKey = "LOGOMARK_PUBLISH_SECRET_KEY"
	EnvPublishBucket    = "LOGOMARK_PUBLISH_BUCKET"
	EnvPublishUseSSL    = "LOGOMARK_PUBLISH_USE_SSL"
	EnvTracingEndpoint  = "LOGOMARK_OTLP_ENDPOINT"
)

func (c *Config) applyEnv() error {
	var err error

	if c.ScaleFraction, err = getEnvFloat(EnvScaleFraction, c.ScaleFraction); err != nil {
		return err
	}
	if c.MarginPx, err = getEnvInt(EnvMarginPx, c.MarginPx); err != nil {
		return err
	}
	if c.Parallel, err = getEnvInt(EnvParallel, c.Parallel); err != nil {
		return err
	}
	if c.Publish.UseSSL, err = getEnvBool(EnvPublishUseSSL, c.Publish.UseSSL); err != nil {
		return err
	}

	c.InputDir = getEnvString(EnvInputDir, c.InputDir)
	c.OutputDir = getEnvString(EnvOutputDir, c.OutputDir)
	c.LogoPath = getEnvString(EnvLogoPath, c.LogoPath)
	c.LogLevel = getEnvString(EnvLogLevel, c.LogLevel)
	c.Video.FFmpegPath = getEnvString(EnvFFmpegPath, c.Video.FFmpegPath)
	c.Video.FFprobePath = getEnvString(EnvFFprobePath, c.Video.FFprobePath)
	c.Publish.Endpoint = getEnvString(EnvPublishEndpoint, c.Publish.Endpoint)
	c.Publish.AccessKey = getEnvString(EnvPublishAccessKey, c.Publish.AccessKey)
	c.Publish.SecretKey = getEnvString(EnvPublishSecretKey, c.Publish.SecretKey)
	c.Publish.Bucket = getEnvString(EnvPublishBucket, c.Publish.Bucket)
	if v := os.Getenv(EnvTracingEndpoint); v != "" {
		c.Tracing.Endpoint = v
		c.Tracing.Enabled = true
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperror.Configuration(err, fmt.Sprintf("invalid %s", key))
	}
	return i, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, apperror.Configuration(err, fmt.Sprintf("invalid %s", key))
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, apperror.Configuration(err, fmt.Sprintf("invalid %s", key))
	}
	return b, nil
}
