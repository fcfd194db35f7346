// Package storage keeps uploaded book photos on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RefPrefix is the leading segment of every stored reference.
const RefPrefix = "uploads"

// DiskStore writes photos under Dir and serves their references relative to
// BaseURL.  References look like "uploads/<millis>-<uuid>-<name>".
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Save copies the uploaded file into Dir and returns its reference.
func (s *DiskStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), sanitize(fh.Filename))
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return RefPrefix + "/" + name, nil
}

// Remove deletes the file behind ref.  Only the base name is used, so a
// reference can never escape Dir.  A missing file is not an error.
func (s *DiskStore) Remove(ref string) error {
	base := filepath.Base(filepath.FromSlash(ref))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, base))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// URL turns a stored reference into an absolute URL.  Values that already
// are absolute URLs are returned unchanged.
func (s *DiskStore) URL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return s.BaseURL + "/" + strings.TrimLeft(ref, "/")
}

func sanitize(name string) string {
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		return "photo"
	}
	return name
}
