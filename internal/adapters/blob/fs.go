// Package blob stores uploads on the local filesystem.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"travel_cms/internal/domain"
)

// FS writes each blob as <dir>/<id> with a <dir>/<id>.json sidecar holding
// its content type. IDs must be UUIDs so they can never escape dir.
type FS struct{ dir string }

func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FS{dir: dir}, nil
}

type sidecar struct {
	ContentType string `json:"contentType"`
}

func (s *FS) path(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.ErrNotFound
	}
	return filepath.Join(s.dir, id), nil
}

func (s *FS) Put(ctx context.Context, id, contentType string, r io.Reader) (domain.BlobInfo, error) {
	p, err := s.path(id)
	if err != nil {
		return domain.BlobInfo{}, fmt.Errorf("blob id %q: %w", id, err)
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return domain.BlobInfo{}, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return domain.BlobInfo{}, err
	}
	meta, _ := json.Marshal(sidecar{ContentType: contentType})
	if err := os.WriteFile(p+".json", meta, 0o644); err != nil {
		return domain.BlobInfo{}, err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return domain.BlobInfo{}, err
	}
	return domain.BlobInfo{ID: id, ContentType: contentType, Size: n}, nil
}

func (s *FS) Stat(ctx context.Context, id string) (domain.BlobInfo, error) {
	p, err := s.path(id)
	if err != nil {
		return domain.BlobInfo{}, err
	}
	st, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.BlobInfo{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.BlobInfo{}, err
	}
	info := domain.BlobInfo{ID: id, Size: st.Size(), ContentType: "application/octet-stream"}
	if b, err := os.ReadFile(p + ".json"); err == nil {
		var sc sidecar
		if json.Unmarshal(b, &sc) == nil && sc.ContentType != "" {
			info.ContentType = sc.ContentType
		}
	}
	return info, nil
}

func (s *FS) Open(ctx context.Context, id string) (io.ReadCloser, domain.BlobInfo, error) {
	info, err := s.Stat(ctx, id)
	if err != nil {
		return nil, domain.BlobInfo{}, err
	}
	p, _ := s.path(id)
	f, err := os.Open(p)
	if err != nil {
		return nil, domain.BlobInfo{}, err
	}
	return f, info, nil
}

func (s *FS) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return err
	}
	_ = os.Remove(p + ".json")
	return nil
}
