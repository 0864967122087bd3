// Package storage stores uploaded post images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for uploads that are not images.
var ErrUnsupportedType = errors.New("unsupported image type")

// allowedExtensions whitelists the accepted image file extensions.
var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// LocalStore saves uploads under a directory served as static files.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory uploads are stored in.
func (s *LocalStore) Dir() string {
	return s.dir
}

// SaveImage stores the uploaded file under a UUID-derived name and returns
// the bare filename to record on the post. The serving URL is formed by the
// router's static route prefix, so the store's directory never leaks into
// stored records. The original filename is never used on disk.
func (s *LocalStore) SaveImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored image by filename. A missing file is not an error.
func (s *LocalStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	// Refuse anything that is not a bare filename inside the upload dir.
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid image name %q", name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
