package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/feichai0017/pdf-toolbox/pkg/logger"
	"github.com/feichai0017/pdf-toolbox/pkg/storage/minio"
	"github.com/feichai0017/pdf-toolbox/pkg/storage/s3"
)

// StorageType selects the artifact archive backend.
type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinio StorageType = "minio"
)

// Storage archives batch artifacts in an object store.
type Storage interface {
	// Store uploads the reader's content under key and returns the key.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get opens the object stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes objects last modified before threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage is the backend factory.
func NewStorage(storageType StorageType, log logger.Logger) (Storage, error) {
	switch storageType {
	case StorageTypeS3:
		return s3.GetClient(log)
	case StorageTypeMinio:
		return minio.GetClient(log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ArchiveArtifacts uploads the given local files under a batch-scoped
// prefix and returns their object keys. Files that fail to upload are
// skipped with a logged warning; a batch whose artifacts exist locally
// should not fail because the archive is unreachable.
func ArchiveArtifacts(ctx context.Context, store Storage, batchID string, files []string, log logger.Logger) []string {
	keys := make([]string, 0, len(files))
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			log.Warn("skipping artifact, cannot open",
				logger.String("file", file),
				logger.Error(err),
			)
			continue
		}

		key := path.Join(batchID, filepath.Base(file))
		if _, err := store.Store(ctx, f, key); err != nil {
			log.Warn("skipping artifact, upload failed",
				logger.String("file", file),
				logger.String("key", key),
				logger.Error(err),
			)
			f.Close()
			continue
		}
		f.Close()
		keys = append(keys, key)
	}
	return keys
}
