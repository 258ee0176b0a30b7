package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/logomark/internal/logger"
	"github.com/gabriel-vasile/mimetype"
)

// Publisher uploads finished outputs under a common key prefix.
type Publisher struct {
	store  Storage
	prefix string
}

func NewPublisher(store Storage, prefix string) *Publisher {
	return &Publisher{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key a local output is published under.
func (p *Publisher) Key(localPath string) string {
	name := filepath.Base(localPath)
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Publish uploads localPath and returns the object's URL.
func (p *Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open output: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat output: %w", err)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind output: %w", err)
	}

	key := p.Key(localPath)
	if err := p.store.Upload(ctx, key, f, mt.String(), info.Size()); err != nil {
		return "", err
	}

	logger.FromContext(ctx).Debug("output published", "key", key, "content_type", mt.String(), "size", info.Size())
	return p.store.URL(key), nil
}
