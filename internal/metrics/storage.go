package metrics

import (
	"context"
	"io"
	"time"

	"github.com/abdul-hamid-achik/logomark/internal/storage"
)

type InstrumentedStorage struct {
	storage.Storage
	rec *Recorder
}

func NewInstrumentedStorage(s storage.Storage, rec *Recorder) *InstrumentedStorage {
	return &InstrumentedStorage{Storage: s, rec: rec}
}

func (s *InstrumentedStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error {
	start := time.Now()

	err := s.Storage.Upload(ctx, key, reader, contentType, size)

	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}

	s.rec.StorageOperationsTotal.WithLabelValues("upload", status).Inc()
	s.rec.StorageOperationDuration.WithLabelValues("upload").Observe(duration)
	if err == nil && size > 0 {
		s.rec.StorageBytesTotal.Add(float64(size))
	}

	return err
}

func (s *InstrumentedStorage) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()

	exists, err := s.Storage.Exists(ctx, key)

	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}

	s.rec.StorageOperationsTotal.WithLabelValues("exists", status).Inc()
	s.rec.StorageOperationDuration.WithLabelValues("exists").Observe(duration)

	return exists, err
}
