package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"vidtube/logging"

	"github.com/gabriel-vasile/mimetype"
)

// UploadImage reads an image form file, normalizes it with PrepareImage and
// stores it as a JPEG under folder.
func UploadImage(ctx context.Context, store MediaStore, folder string, fh *multipart.FileHeader, maxW, maxH int) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	buf, err := PrepareImage(f, maxW, maxH)
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename)) + ".jpg"
	return store.Upload(ctx, Object{
		Folder:      folder,
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(buf.Len()),
		Body:        buf,
	})
}

// UploadFile stores a form file as-is under folder.
func UploadFile(ctx context.Context, store MediaStore, folder string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	contentType, err := detectContentType(fh, f)
	if err != nil {
		return "", err
	}
	return store.Upload(ctx, Object{
		Folder:      folder,
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	})
}

// detectContentType trusts a specific client-sent type, then the file
// extension, then sniffs the content. f is rewound afterwards.
func detectContentType(fh *multipart.FileHeader, f multipart.File) (string, error) {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct, nil
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); byExt != "" {
		return byExt, nil
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("sniff %s: %w", fh.Filename, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind %s: %w", fh.Filename, err)
	}
	return mt.String(), nil
}

// Discard deletes objects that are no longer referenced. Failures are logged
// and otherwise ignored.
func Discard(ctx context.Context, store MediaStore, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := store.Delete(ctx, url); err != nil {
			logging.FromContext(ctx).Warn("delete media failed", "url", url, "err", err)
		}
	}
}
