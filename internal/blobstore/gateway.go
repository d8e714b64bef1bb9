// Package blobstore is the storage gateway in front of the object store that
// holds attachment bytes.
package blobstore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Object is what a successful upload returns: a retrieval URL and the key to delete it by.
type Object struct {
	URL string
	Key string
}

// Gateway stores bytes under a key and deletes them again.
type Gateway interface {
	Upload(ctx context.Context, folder, fileName, contentType string, data []byte) (Object, error)
	Delete(ctx context.Context, key string) error
}

// Folder returns the deterministic folder for an entity: "<root>/<entityType>s/<entityID>".
func Folder(root, entityType, entityID string) string {
	return path.Join(strings.Trim(root, "/"), entityType+"s", entityID)
}

// ObjectKey builds a unique key inside folder that keeps the original extension.
func ObjectKey(folder, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(fileName)))
	if len(ext) > 16 || strings.ContainsAny(ext, " /\\") {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", strings.TrimSuffix(folder, "/"), uuid.NewString(), ext)
}
