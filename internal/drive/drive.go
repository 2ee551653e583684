package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
	"github.com/SoeMoeHtet18/telegram-bot/internal/storage"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Store is a storage.ObjectStore over Google Drive. Folders are created under
// RootID when set, otherwise in the drive root.
type Store struct {
	svc    *gdrive.Service
	RootID string
}

func New(ctx context.Context, rootID string, opts ...option.ClientOption) (*Store, error) {
	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return &Store{svc: svc, RootID: rootID}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.svc.About.Get().Fields("user").Context(ctx).Do()
	return err
}

func (s *Store) CreateFolder(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escape(name), folderMimeType)
	if s.RootID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escape(s.RootID))
	}
	res, err := s.svc.Files.List().Q(q).OrderBy("createdTime").Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("lookup folder %q: %w", name, err)
	}
	if len(res.Files) > 0 {
		return res.Files[0].Id, nil
	}

	folder := &gdrive.File{Name: name, MimeType: folderMimeType}
	if s.RootID != "" {
		folder.Parents = []string{s.RootID}
	}
	created, err := s.svc.Files.Create(folder).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return created.Id, nil
}

func (s *Store) UploadObject(ctx context.Context, folderID, name string, data []byte, mimeType string) (models.ObjectHandle, error) {
	meta := &gdrive.File{Name: name, Parents: []string{folderID}, MimeType: mimeType}
	f, err := s.svc.Files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id, name, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return models.ObjectHandle{}, fmt.Errorf("upload %q: %w", name, err)
	}
	return models.ObjectHandle{ID: f.Id, Name: f.Name, Link: f.WebViewLink}, nil
}

func (s *Store) ListObjects(ctx context.Context, folderID, prefix string) ([]models.ObjectHandle, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", escape(folderID))
	if prefix != "" {
		q += fmt.Sprintf(" and name contains '%s'", escape(prefix))
	}
	var out []models.ObjectHandle
	err := s.svc.Files.List().
		Q(q).
		OrderBy("createdTime").
		Fields("nextPageToken, files(id, name, webViewLink)").
		PageSize(1000).
		Pages(ctx, func(page *gdrive.FileList) error {
			for _, f := range page.Files {
				// "contains" matches word prefixes, so narrow it down here.
				if !strings.HasPrefix(f.Name, prefix) {
					continue
				}
				out = append(out, models.ObjectHandle{ID: f.Id, Name: f.Name, Link: f.WebViewLink})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folderID, err)
	}
	return out, nil
}

func (s *Store) GetObject(ctx context.Context, id string) ([]byte, error) {
	resp, err := s.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func escape(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}
