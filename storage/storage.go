// Package storage holds recipe images in a blob backend: local disk for
// development, S3/MinIO in production.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"forkful/hooks"
)

// BlobStore stores and deletes image blobs. Upload returns the public URL
// under which the blob is reachable; Delete takes that same URL back.
type BlobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// RandomKey builds a collision-free object key that keeps the original
// file extension.
func RandomKey(filename string) string {
	now := time.Now()
	return fmt.Sprintf("recipes/%d/%d/%s%s", now.Year(), now.Month(), uuid.New(), filepath.Ext(filename))
}

// CleanupHook deletes a recipe's stored image once the record itself is
// gone. Failures are logged and swallowed: a leaked blob is preferable to a
// failed delete.
func CleanupHook(blobs BlobStore) hooks.Handler {
	return func(ev hooks.Event) {
		if ev.Op != hooks.OpDelete || ev.Before == nil || ev.Before.ImageURL == "" {
			return
		}
		if err := blobs.Delete(context.Background(), ev.Before.ImageURL); err != nil {
			log.Printf("storage: delete image for recipe %s: %v", ev.ID, err)
			return
		}
		log.Printf("storage: deleted image for recipe %s", ev.ID)
	}
}
