package destination

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
)

// GCSSink stores files in Cloud Storage using Application Default Credentials.
// The client is created on first use.
type GCSSink struct {
	once   sync.Once
	client *storage.Client
	err    error
}

// NewGCSSink returns a sink; no connection is made until the first call.
func NewGCSSink() *GCSSink {
	return &GCSSink{}
}

// NewGCSSinkWithClient wraps an existing client.
func NewGCSSinkWithClient(client *storage.Client) *GCSSink {
	s := &GCSSink{client: client}
	s.once.Do(func() {})
	return s
}

func (s *GCSSink) storageClient(ctx context.Context) (*storage.Client, error) {
	s.once.Do(func() {
		s.client, s.err = storage.NewClient(ctx)
	})
	if s.err != nil {
		return nil, fmt.Errorf("create storage client: %w", s.err)
	}
	return s.client, nil
}

// Put uploads data. A failed upload leaves no object behind.
func (s *GCSSink) Put(ctx context.Context, location string, data []byte) (string, error) {
	bucket, object, err := ParseGCS(location)
	if err != nil {
		return "", err
	}
	client, err := s.storageClient(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv; charset=utf-8"
	if _, err := w.Write(data); err != nil {
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("write to GCS object %s: %w", location, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload of %s: %w", location, err)
	}
	return location, nil
}

// Get downloads an object.
func (s *GCSSink) Get(ctx context.Context, location string) ([]byte, error) {
	bucket, object, err := ParseGCS(location)
	if err != nil {
		return nil, err
	}
	client, err := s.storageClient(ctx)
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader %s: %w", location, err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object %s: %w", location, err)
	}
	return data, nil
}

// Remove deletes an object; a missing object is not an error.
func (s *GCSSink) Remove(ctx context.Context, location string) error {
	bucket, object, err := ParseGCS(location)
	if err != nil {
		return err
	}
	client, err := s.storageClient(ctx)
	if err != nil {
		return err
	}
	err = client.Bucket(bucket).Object(object).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// Close releases the client, if one was created.
func (s *GCSSink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
