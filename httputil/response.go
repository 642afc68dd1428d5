package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"vidtube/logging"
)

// DefaultBodyLimit is the default maximum request body size (1 MB).
const DefaultBodyLimit int64 = 1 << 20

// Envelope is the body shape of every API response.
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Errors     []string    `json:"errors,omitempty"`
}

// APIError is an error that maps directly onto an HTTP status and message.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string { return e.Message }

// NewError builds an APIError.
func NewError(status int, message string, errs ...string) *APIError {
	return &APIError{Status: status, Message: message, Errors: errs}
}

// WriteJSON sends a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Respond writes a success envelope.
func Respond(w http.ResponseWriter, status int, data interface{}, message string) {
	WriteJSON(w, status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

// Fail writes an error envelope with data set to null.
func Fail(w http.ResponseWriter, status int, message string, errs ...string) {
	if errs == nil {
		errs = []string{}
	}
	WriteJSON(w, status, Envelope{
		StatusCode: status,
		Message:    message,
		Errors:     errs,
	})
}

// FailErr writes err as an error envelope. APIErrors keep their status; any
// other error is logged and reported as a 500 with a generic message.
func FailErr(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		Fail(w, apiErr.Status, apiErr.Message, apiErr.Errors...)
		return
	}
	logging.FromContext(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	Fail(w, http.StatusInternalServerError, "internal server error")
}

// MaxBody wraps r.Body with a size limit to prevent oversized payloads.
func MaxBody(r *http.Request, n int64) {
	r.Body = http.MaxBytesReader(nil, r.Body, n)
}

// LimitedBodyReader returns an io.Reader capped at DefaultBodyLimit.
func LimitedBodyReader(r *http.Request) io.Reader {
	return io.LimitReader(r.Body, DefaultBodyLimit)
}
