package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"product-media/internal/logging"
	"product-media/internal/mediatypes"
	"product-media/internal/naming"
	"product-media/internal/raster"
	"product-media/internal/video"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged since they cannot be recovered from once
// headers are out.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// uploadErrorStatus maps a pipeline failure to an HTTP status. Rejections
// the client can fix (bad filename, disallowed type, undecodable media)
// are 400s; everything else is the server's fault.
func uploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, naming.ErrInvalidUpload),
		errors.Is(err, mediatypes.ErrDisallowedType),
		errors.Is(err, raster.ErrUnsupportedFormat),
		errors.Is(err, video.ErrUnreadableVideo):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
