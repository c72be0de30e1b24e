package object

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for storing, reading and removing binary objects.
// Put overwrites an existing key; Delete of a missing key succeeds.
type ObjectStore interface {
	Put(ctx context.Context, storageKey string, data []byte, contentType string) error
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// Key builds the storage key "{owner}/{uniqueID}-{fileName}". The owner segment has
// path separators replaced so it always maps to a single directory level.
func Key(ownerID, uniqueID, fileName string) string {
	owner := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(ownerID))
	owner = strings.ReplaceAll(owner, "..", "_")
	return owner + "/" + uniqueID + "-" + fileName
}
