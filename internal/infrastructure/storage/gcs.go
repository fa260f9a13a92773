package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
)

// GCSStorage stores objects in a Google Cloud Storage bucket
type GCSStorage struct {
	client       *gcstorage.Client
	bucket       string
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewGCSStorage creates bucket-backed object storage. Credentials come from
// the ambient application default credentials.
func NewGCSStorage(ctx context.Context, bucket string, writeTimeout time.Duration, logger *zap.Logger) (*GCSStorage, error) {
	client, err := gcstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	return &GCSStorage{
		client:       client,
		bucket:       bucket,
		writeTimeout: writeTimeout,
		logger:       logger,
	}, nil
}

// Put writes content under key, overwriting any prior object
func (s *GCSStorage) Put(ctx context.Context, key string, content []byte, contentType string) (*port.StoredObject, error) {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(content); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize object %s: %w", key, err)
	}

	s.logger.Debug("Stored object",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(content)))
	return &port.StoredObject{
		Key: key,
		URL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key),
	}, nil
}

// Get reads the object stored under key
func (s *GCSStorage) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return content, nil
}

// Close releases the underlying client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
