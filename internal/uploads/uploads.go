// Package uploads stores image files received in multipart requests.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// URLPrefix is the public path uploaded images are served under.
const URLPrefix = "uploads/images"

// Store writes uploaded images into a base directory and hands back the
// public path recorded on the owning record.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string { return s.baseDir }

var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Save writes the uploaded file under a fresh UUID name and returns its
// public path (URLPrefix + "/" + name).
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.baseDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return path.Join(URLPrefix, name), nil
}

// Remove deletes a previously saved image by its public path. Failures are
// logged, never surfaced: file cleanup is best effort.
func (s *Store) Remove(publicPath string) {
	if publicPath == "" {
		return
	}
	target := filepath.Join(s.baseDir, path.Base(publicPath))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", target).Msg("Failed to remove uploaded image")
	}
}
