package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/arise-roster/internal/api/apierr"
)

// maxBodySize bounds JSON request bodies
const maxBodySize = 1 << 20

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeJSON reads a JSON body into v, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return false
	}
	return true
}

// NewPayloadTooLargeError creates an upload-too-large error
func NewPayloadTooLargeError() error {
	return apierr.NewPayloadTooLargeError("File exceeds the upload size limit")
}
