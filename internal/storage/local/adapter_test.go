package local_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tidewell/aisclean/internal/storage"
	storageconfig "github.com/tidewell/aisclean/internal/storage/config"
	"github.com/tidewell/aisclean/internal/storage/local"
	"github.com/tidewell/aisclean/internal/support/exception"
)

func newTestAdapter(t *testing.T) (storage.Connection, string) {
	baseDir := t.TempDir()
	adapter, err := local.NewLocalAdapter(storageconfig.StorageConfig{
		Type:    "local",
		BaseDir: baseDir,
	}, "test")
	assert.NoError(t, err)
	return adapter, baseDir
}

func TestLocalAdapter_UploadDownloadRoundTrip(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	err := adapter.Upload(ctx, "raw", "input/data.csv", bytes.NewReader([]byte("timestamp\n1700000000\n")), "text/csv")
	assert.NoError(t, err)

	rc, err := adapter.Download(ctx, "raw", "input/data.csv")
	assert.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, "timestamp\n1700000000\n", string(content))
}

func TestLocalAdapter_DownloadMissingObjectIsNotFound(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	_, err := adapter.Download(context.Background(), "raw", "missing.csv")
	assert.ErrorIs(t, err, exception.ErrNotFound)
}

func TestLocalAdapter_ListObjectsWithPrefix(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	for _, key := range []string{"telemetry/year=2023/a.parquet", "telemetry/year=2024/b.parquet", "other/c.txt"} {
		assert.NoError(t, adapter.Upload(ctx, "curated", key, bytes.NewReader([]byte("x")), ""))
	}

	var listed []string
	err := adapter.ListObjects(ctx, "curated", "telemetry/", func(objectName string) error {
		listed = append(listed, objectName)
		return nil
	})
	assert.NoError(t, err)
	sort.Strings(listed)
	assert.Equal(t, []string{"telemetry/year=2023/a.parquet", "telemetry/year=2024/b.parquet"}, listed)
}

func TestLocalAdapter_DeleteObjectIsIdempotent(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	assert.NoError(t, adapter.Upload(ctx, "raw", "data.csv", bytes.NewReader([]byte("x")), ""))
	assert.NoError(t, adapter.DeleteObject(ctx, "raw", "data.csv"))
	// Deleting an absent object is tolerated.
	assert.NoError(t, adapter.DeleteObject(ctx, "raw", "data.csv"))
}

func TestLocalAdapter_RejectsPathEscape(t *testing.T) {
	adapter, baseDir := newTestAdapter(t)

	outside := filepath.Join(baseDir, "..", "escape.txt")
	_, err := adapter.Download(context.Background(), "", "../escape.txt")
	assert.Error(t, err)
	_, statErr := os.Stat(outside)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewLocalAdapter_RequiresBaseDir(t *testing.T) {
	_, err := local.NewLocalAdapter(storageconfig.StorageConfig{Type: "local"}, "test")
	assert.Error(t, err)
}
