// Package gcs provides a Google Cloud Storage implementation of the storage
// adapter interfaces.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	appconfig "github.com/tidewell/aisclean/internal/config"
	"github.com/tidewell/aisclean/internal/storage"
	storageconfig "github.com/tidewell/aisclean/internal/storage/config"
	"github.com/tidewell/aisclean/internal/support/exception"
	"github.com/tidewell/aisclean/internal/support/logger"
)

// ProviderType defines the type identifier for this GCS storage provider.
const ProviderType = "gcs"

// gcsAdapter implements storage.Connection on top of a GCS client.
type gcsAdapter struct {
	client *gstorage.Client
	cfg    storageconfig.StorageConfig
	name   string
}

var _ storage.Connection = (*gcsAdapter)(nil)

// NewGCSAdapter creates a new gcsAdapter instance. When a credentials file
// is configured it is used explicitly; otherwise the client falls back to
// application default credentials.
func NewGCSAdapter(ctx context.Context, cfg storageconfig.StorageConfig, name string) (storage.Connection, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}
	return &gcsAdapter{client: client, cfg: cfg, name: name}, nil
}

// Close releases the underlying GCS client.
func (a *gcsAdapter) Close() error {
	logger.Debugf("GCS storage adapter '%s' closed.", a.name)
	return a.client.Close()
}

// Type returns the type of the adapter, which is "gcs".
func (a *gcsAdapter) Type() string {
	return ProviderType
}

// Name returns the name of this connection.
func (a *gcsAdapter) Name() string {
	return a.name
}

// Upload streams data into bucket/objectName.
func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	bucket = a.defaultBucket(bucket)
	w := a.client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, data); err != nil {
		// Abandon the partially written object before surfacing the error.
		_ = w.Close()
		return a.translate(fmt.Sprintf("failed to upload object '%s' to bucket '%s'", objectName, bucket), err)
	}
	if err := w.Close(); err != nil {
		return a.translate(fmt.Sprintf("failed to finalize object '%s' in bucket '%s'", objectName, bucket), err)
	}
	logger.Debugf("Uploaded object '%s' to bucket '%s' (gcs adapter '%s').", objectName, bucket, a.name)
	return nil
}

// Download opens a reader on bucket/objectName. The returned ReadCloser
// must be closed by the caller.
func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	bucket = a.defaultBucket(bucket)
	rc, err := a.client.Bucket(bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, a.translate(fmt.Sprintf("failed to open object '%s' in bucket '%s'", objectName, bucket), err)
	}
	return rc, nil
}

// ListObjects calls fn for every object under the given prefix.
func (a *gcsAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	bucket = a.defaultBucket(bucket)
	it := a.client.Bucket(bucket).Objects(ctx, &gstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return a.translate(fmt.Sprintf("failed to list objects in bucket '%s'", bucket), err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

// DeleteObject deletes bucket/objectName. A missing object is not an error.
func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	bucket = a.defaultBucket(bucket)
	err := a.client.Bucket(bucket).Object(objectName).Delete(ctx)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logger.Warnf("Attempted to delete non-existent object '%s' (gcs adapter '%s').", objectName, a.name)
		return nil
	}
	if err != nil {
		return a.translate(fmt.Sprintf("failed to delete object '%s' in bucket '%s'", objectName, bucket), err)
	}
	return nil
}

// defaultBucket falls back to the configured bucket when none is given.
func (a *gcsAdapter) defaultBucket(bucket string) string {
	if bucket == "" {
		return a.cfg.BucketName
	}
	return bucket
}

// translate maps GCS client errors onto the pipeline error taxonomy so
// collaborator failures propagate with their kind intact.
func (a *gcsAdapter) translate(message string, err error) error {
	if errors.Is(err, gstorage.ErrObjectNotExist) || errors.Is(err, gstorage.ErrBucketNotExist) {
		return exception.NewPipelineError("storage", message, exception.ErrNotFound, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return exception.NewPipelineError("storage", message, exception.ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return exception.NewPipelineError("storage", message, exception.ErrAccess, err)
		case http.StatusTooManyRequests, http.StatusInsufficientStorage:
			return exception.NewPipelineError("storage", message, exception.ErrCapacity, err)
		}
	}
	return exception.NewPipelineError("storage", message, nil, err)
}

// GCSProvider implements storage.Provider for GCS connections.
type GCSProvider struct {
	cfg         *appconfig.Config
	connections map[string]storage.Connection
	mu          sync.RWMutex
}

// NewGCSProvider creates a new GCSProvider instance.
func NewGCSProvider(cfg *appconfig.Config) storage.Provider {
	return &GCSProvider{
		cfg:         cfg,
		connections: make(map[string]storage.Connection),
	}
}

// GetConnection retrieves the named connection, creating it on first use.
func (p *GCSProvider) GetConnection(name string) (storage.Connection, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.connections[name]; ok {
		return conn, nil
	}

	storageCfg, err := storageconfig.Lookup(p.cfg, name)
	if err != nil {
		return nil, err
	}
	if storageCfg.Type != ProviderType {
		return nil, fmt.Errorf("storage config type mismatch for '%s': expected '%s', got '%s'", name, ProviderType, storageCfg.Type)
	}

	newConn, err := NewGCSAdapter(context.Background(), storageCfg, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs adapter for '%s': %w", name, err)
	}
	p.connections[name] = newConn
	return newConn, nil
}

// CloseAll closes all connections managed by this provider.
func (p *GCSProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close gcs storage connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing gcs storage connections: %v", errs)
	}
	return nil
}

// Type returns the type of resource handled by this provider.
func (p *GCSProvider) Type() string {
	return ProviderType
}
