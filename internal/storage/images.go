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

var ErrUnsupportedImageType = errors.New("unsupported image type")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ImageStore saves uploaded images under a base directory, one
// subdirectory per collection (premios, promociones, tickets).
type ImageStore struct {
	basePath string
}

func NewImageStore(basePath string) *ImageStore {
	return &ImageStore{basePath: basePath}
}

// Save stores an uploaded image and returns its relative path.
func (s *ImageStore) Save(c *gin.Context, file *multipart.FileHeader, collection string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedImageType
	}

	dir := filepath.Join(s.basePath, collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	relative := filepath.Join(collection, uuid.New().String()+ext)
	if err := c.SaveUploadedFile(file, filepath.Join(s.basePath, relative)); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return relative, nil
}

// Delete removes a stored image. A missing file is not an error.
func (s *ImageStore) Delete(relative string) error {
	if relative == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.basePath, relative))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
