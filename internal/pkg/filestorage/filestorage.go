// Package filestorage stores user-uploaded images (avatars, event covers)
package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/walkandtalk/walktalk/internal/pkg/logger"
)

// Subdirectories for the two image kinds
const (
	AvatarDir     = "avatars"
	EventImageDir = "events"
)

// FileStorage is the capability the profile and feed layers use for images
type FileStorage interface {
	// Save stores content under subdir and returns the public URL path
	Save(r io.Reader, filename, subdir string) (string, error)

	// SaveUpload stores a multipart upload under subdir
	SaveUpload(fileHeader *multipart.FileHeader, subdir string) (string, error)

	// Delete removes a previously stored file by its URL path
	Delete(fileURL string) error

	// FullPath maps a URL path back to the filesystem location
	FullPath(fileURL string) string
}

// LocalStorage keeps files on the local filesystem
type LocalStorage struct {
	basePath string
	baseURL  string // prepended to returned paths when set
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage creates a LocalStorage rooted at basePath
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// Save stores content under subdir with a collision-free name
func (ls *LocalStorage) Save(r io.Reader, filename, subdir string) (string, error) {
	dir := ls.basePath
	if subdir != "" {
		dir = filepath.Join(ls.basePath, subdir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	unique := uuid.New().String() + filepath.Ext(filename)
	dstPath := filepath.Join(dir, unique)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to write uploaded content: %w", err)
	}

	rel := unique
	if subdir != "" {
		rel = subdir + "/" + unique
	}
	logger.Debug().Str("path", dstPath).Msg("Stored uploaded file")
	if ls.baseURL != "" {
		return strings.TrimRight(ls.baseURL, "/") + "/" + rel, nil
	}
	return "/" + rel, nil
}

// SaveUpload stores a multipart upload under subdir
func (ls *LocalStorage) SaveUpload(fileHeader *multipart.FileHeader, subdir string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()
	return ls.Save(file, fileHeader.Filename, subdir)
}

// Delete removes a stored file by its URL path, ignoring files already gone
func (ls *LocalStorage) Delete(fileURL string) error {
	path := ls.FullPath(fileURL)
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// FullPath maps a URL path back under basePath, refusing traversal outside it
func (ls *LocalStorage) FullPath(fileURL string) string {
	rel := fileURL
	if ls.baseURL != "" {
		rel = strings.TrimPrefix(rel, strings.TrimRight(ls.baseURL, "/"))
	}
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || strings.Contains(rel, "..") {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}
