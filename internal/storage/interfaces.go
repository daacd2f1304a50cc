// Package storage defines the common interfaces of the object storage
// adapters. They abstract upload and download so the pipeline can run
// against GCS in production and the local file system in tests through a
// unified API.
package storage

import (
	"context"
	"io"
)

// Connection represents one named storage backend.
type Connection interface {
	// Close releases any resources held by the connection.
	Close() error
	// Type returns the adapter type identifier (e.g. "gcs", "local").
	Type() string
	// Name returns the configured connection name.
	Name() string

	// Upload uploads data to the specified bucket and object name.
	// contentType is the MIME type of the data.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download downloads data from the specified bucket and object name.
	// The returned ReadCloser must be closed by the caller.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects calls fn for every object under the given prefix.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject deletes the specified object from the bucket.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// Provider manages the acquisition and lifecycle of connections of one
// adapter type.
type Provider interface {
	// GetConnection retrieves (creating if necessary) the named connection.
	GetConnection(name string) (Connection, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
	// Type returns the adapter type this provider handles.
	Type() string
}

// ConnectionResolver resolves a named storage connection by looking up its
// configured type and delegating to the matching provider.
type ConnectionResolver interface {
	Resolve(ctx context.Context, name string) (Connection, error)
}
