package writer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tidewell/aisclean/internal/storage"
	"github.com/tidewell/aisclean/internal/support/logger"
)

// Publisher uploads a complete partition set to object storage.
type Publisher struct {
	resolver   storage.ConnectionResolver
	storageRef string
	bucket     string
}

// NewPublisher creates a Publisher targeting the named storage connection
// and bucket.
func NewPublisher(resolver storage.ConnectionResolver, storageRef, bucket string) *Publisher {
	return &Publisher{resolver: resolver, storageRef: storageRef, bucket: bucket}
}

// Publish uploads every partition file. Files are only handed to this method
// after the whole set has been encoded, so a failure here means the
// invocation fails as a whole and is never reported as done; the storage
// error propagates unchanged.
func (p *Publisher) Publish(ctx context.Context, files []PartitionFile) error {
	conn, err := p.resolver.Resolve(ctx, p.storageRef)
	if err != nil {
		return fmt.Errorf("failed to resolve storage connection '%s': %w", p.storageRef, err)
	}

	for _, file := range files {
		if err := conn.Upload(ctx, p.bucket, file.Path, bytes.NewReader(file.Bytes), "application/octet-stream"); err != nil {
			return err
		}
		logger.Infof("Uploaded partition file '%s' (%d rows, %d bytes).", file.Path, file.Rows, len(file.Bytes))
	}
	return nil
}
