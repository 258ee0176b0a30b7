package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound      = errors.New("storage: file not found")
	ErrInvalidKey    = errors.New("storage: invalid key")
	ErrNotConfigured = errors.New("storage: publish target not configured")
)

// Storage is the object store watermarked outputs are published to.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
}

type Config struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"-"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
	Region    string `yaml:"region" json:"region"`
	Prefix    string `yaml:"prefix" json:"prefix"`
}

// Enabled reports whether enough is set to reach a bucket.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}
