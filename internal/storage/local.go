// Package storage implements media upload storage backends.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"prok/internal/models"

	"github.com/google/uuid"
)

var (
	postExtensions   = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".mp4": true}
	avatarExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}
)

// MediaStore persists uploaded files and returns a serving URL for each.
type MediaStore interface {
	SavePostMedia(file *multipart.FileHeader, userID uint) (string, error)
	SaveAvatar(file *multipart.FileHeader, userID uint) (string, error)
}

// LocalStore writes uploads to a directory on local disk, served statically
// under /uploads/.
type LocalStore struct {
	baseDir  string
	maxBytes int64
}

// NewLocalStore returns a LocalStore rooted at baseDir with the given size cap.
func NewLocalStore(baseDir string, maxBytes int64) *LocalStore {
	return &LocalStore{baseDir: baseDir, maxBytes: maxBytes}
}

// SavePostMedia stores a post attachment and returns its URL.
func (s *LocalStore) SavePostMedia(file *multipart.FileHeader, userID uint) (string, error) {
	return s.save(file, userID, "posts", postExtensions)
}

// SaveAvatar stores a profile image and returns its URL.
func (s *LocalStore) SaveAvatar(file *multipart.FileHeader, userID uint) (string, error) {
	return s.save(file, userID, "avatars", avatarExtensions)
}

func (s *LocalStore) save(file *multipart.FileHeader, userID uint, subdir string, allowed map[string]bool) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowed[ext] {
		return "", models.NewValidationError("Invalid file type.")
	}
	if file.Size > s.maxBytes {
		return "", models.NewValidationError("File too large.")
	}

	dir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// Unique name: never trust the client-supplied filename on disk.
	name := fmt.Sprintf("%d_%d_%s%s", userID, time.Now().Unix(), uuid.New().String()[:8], ext)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return "/uploads/" + subdir + "/" + name, nil
}
