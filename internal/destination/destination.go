// Package destination reads statements from and writes results to either the
// local filesystem or Google Cloud Storage (gs://bucket/object).
package destination

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"fjacquet/rabbit/internal/models"
)

const gcsScheme = "gs://"

// IsGCS reports whether location is a Cloud Storage URI.
func IsGCS(location string) bool {
	return strings.HasPrefix(location, gcsScheme)
}

// ParseGCS splits gs://bucket/path/to/object into bucket and object.
func ParseGCS(uri string) (bucket, object string, err error) {
	if !IsGCS(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.HasSuffix(parts[1], "/") {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// BaseName returns the file name part of a local path or GCS URI.
func BaseName(location string) string {
	if IsGCS(location) {
		return path.Base(strings.TrimPrefix(location, gcsScheme))
	}
	return filepath.Base(location)
}

// Sink stores and fetches whole files.
type Sink interface {
	// Put stores data at location and returns the location identifier.
	Put(ctx context.Context, location string, data []byte) (string, error)
	Get(ctx context.Context, location string) ([]byte, error)
	Remove(ctx context.Context, location string) error
}

// Router sends gs:// locations to the GCS sink and everything else to the local disk.
type Router struct {
	Local Sink
	GCS   Sink
}

// NewRouter creates a router. gcs may be nil, which makes gs:// locations fail.
func NewRouter(gcs Sink) *Router {
	return &Router{Local: LocalSink{}, GCS: gcs}
}

func (r *Router) pick(location string) (Sink, error) {
	if IsGCS(location) {
		if r.GCS == nil {
			return nil, fmt.Errorf("cloud storage is not available for %s", location)
		}
		return r.GCS, nil
	}
	return r.Local, nil
}

func (r *Router) Put(ctx context.Context, location string, data []byte) (string, error) {
	s, err := r.pick(location)
	if err != nil {
		return "", err
	}
	return s.Put(ctx, location, data)
}

func (r *Router) Get(ctx context.Context, location string) ([]byte, error) {
	s, err := r.pick(location)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, location)
}

func (r *Router) Remove(ctx context.Context, location string) error {
	s, err := r.pick(location)
	if err != nil {
		return err
	}
	return s.Remove(ctx, location)
}

// LocalSink writes files atomically: a reader never sees a partial file.
type LocalSink struct{}

func (LocalSink) Put(_ context.Context, location string, data []byte) (string, error) {
	dir := filepath.Dir(location)
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return "", fmt.Errorf("error creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(location)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("error creating output file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("error writing output file: %w", err)
	}
	if err := tmp.Chmod(models.PermissionReportFile); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("error writing output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("error closing output file: %w", err)
	}
	if err := os.Rename(tmpName, location); err != nil {
		cleanup()
		return "", fmt.Errorf("error finalizing output file: %w", err)
	}
	return location, nil
}

func (LocalSink) Get(_ context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(location) // #nosec G304 -- location is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", location, err)
	}
	return data, nil
}

func (LocalSink) Remove(_ context.Context, location string) error {
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
