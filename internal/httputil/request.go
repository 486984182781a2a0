package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"previewhub/internal/config"
	models "previewhub/internal/domain/models/workspace"
)

// maxBodyBytes leaves headroom over the largest file content for JSON framing
const maxBodyBytes = config.MaxFileContentBytes + 64<<10

// ErrBodyTooLarge is returned by ParseJSON when the body exceeds the limit
var ErrBodyTooLarge = errors.New("request body too large")

// ParseJSON decodes JSON from the request body into dest.
// Unknown fields are rejected so typos in PATCH bodies fail loudly.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid JSON: empty body")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// NodePath reads the {path...} wildcard as a workspace path
func NodePath(r *http.Request) models.Path {
	return models.ParsePath(r.PathValue("path"))
}
