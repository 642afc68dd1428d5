package httputil

import (
	"errors"
	"mime/multipart"
	"net/http"
)

// DefaultUploadLimit caps multipart bodies when no limit is configured.
const DefaultUploadLimit int64 = 32 << 20

// ParseMultipart caps the body at limit bytes and parses a multipart form.
func ParseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	if limit <= 0 {
		limit = DefaultUploadLimit
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewError(http.StatusRequestEntityTooLarge, "upload too large")
		}
		return NewError(http.StatusBadRequest, "invalid multipart form")
	}
	return nil
}

// FormFile returns the named non-empty upload, or nil when it was not sent.
func FormFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return nil
	}
	return files[0]
}
