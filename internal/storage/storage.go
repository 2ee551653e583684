package storage

import (
	"context"
	"errors"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

var ErrNotFound = errors.New("object not found")

// ObjectStore is a flat folder/object document store. Folder ids are opaque
// and returned by CreateFolder, which is idempotent per name.
type ObjectStore interface {
	CreateFolder(ctx context.Context, name string) (string, error)
	UploadObject(ctx context.Context, folderID, name string, data []byte, mimeType string) (models.ObjectHandle, error)
	// ListObjects returns objects in the folder whose name starts with prefix,
	// oldest first.
	ListObjects(ctx context.Context, folderID, prefix string) ([]models.ObjectHandle, error)
	GetObject(ctx context.Context, id string) ([]byte, error)
	Ping(ctx context.Context) error
}
