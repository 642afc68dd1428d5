// Package storage uploads media files to object storage and maps the
// resulting public URLs back to object keys.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Folders used for uploaded media.
const (
	FolderAvatars    = "avatars"
	FolderCovers     = "covers"
	FolderThumbnails = "thumbnails"
	FolderVideos     = "videos"
)

// ErrEmptyObject is returned when an upload has no body.
var ErrEmptyObject = errors.New("storage: empty object")

// Object is one file to upload.
type Object struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaStore persists media objects and returns their public URL.
// Delete ignores URLs the store did not produce.
type MediaStore interface {
	Upload(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, url string) error
}

// NewKey builds "{folder}/{yyyymmdd}-{uuid}{ext}" with the extension taken
// from the original filename.
func NewKey(folder, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(folder, now.UTC().Format("20060102")+"-"+uuid.NewString()+ext)
}

// PublicURL joins a base URL and an object key.
func PublicURL(baseURL, key string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}

// KeyFromURL returns the object key for a URL produced under baseURL.
func KeyFromURL(baseURL, url string) (string, bool) {
	prefix := strings.TrimSuffix(baseURL, "/") + "/"
	if baseURL == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
