package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"product-media/internal/database"
	"product-media/internal/logging"
	"product-media/internal/mediatypes"
)

// GetMedia handles GET /api/media/{id}.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	m, err := h.db.GetMedia(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("failed to load media %d: %v", id, err)
		writeJSONError(w, "Failed to load media", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, m)
}

// ListProductMedia handles GET /api/products/{productId}/media with an
// optional ?type=photo|video filter.
func (h *Handlers) ListProductMedia(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(mux.Vars(r)["productId"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	var kind mediatypes.Kind
	if filter := r.URL.Query().Get("type"); filter != "" {
		kind, err = mediatypes.KindFromString(filter)
		if err != nil {
			writeJSONError(w, "Invalid type filter", http.StatusBadRequest)
			return
		}
	}

	list, err := h.db.ListMediaByProduct(r.Context(), productID, kind)
	if err != nil {
		logging.Error("failed to list media for product %d: %v", productID, err)
		writeJSONError(w, "Failed to list media", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []database.Media{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, list)
}

// UpdateMedia handles PATCH /api/media/{id}. Only altText and isMain can
// change: the files themselves are immutable once generated.
func (h *Handlers) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	var patch struct {
		AltText *string `json:"altText"`
		IsMain  *bool   `json:"isMain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.db.UpdateMedia(r.Context(), id, database.MediaPatch{
		AltText: patch.AltText,
		IsMain:  patch.IsMain,
	})
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("failed to update media %d: %v", id, err)
		writeJSONError(w, "Failed to update media", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, m)
}

// DeleteMedia handles DELETE /api/media/{id}. The row is removed first;
// file removal is best-effort, since an orphan file is recoverable but a
// row pointing at deleted files is not.
func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	m, err := h.db.GetMedia(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("failed to load media %d: %v", id, err)
		writeJSONError(w, "Failed to delete media", http.StatusInternalServerError)
		return
	}

	if err := h.db.DeleteMedia(r.Context(), id); err != nil {
		logging.Error("failed to delete media %d: %v", id, err)
		writeJSONError(w, "Failed to delete media", http.StatusInternalServerError)
		return
	}

	for _, name := range m.StoredFilenames() {
		path := filepath.Join(h.uploadDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove %s: %v", path, err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// MoveMedia handles POST /api/media/{id}/move with {"direction":"up"|"down"},
// swapping the row's gallery position with its neighbor.
func (h *Handlers) MoveMedia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var m *database.Media
	switch req.Direction {
	case "up":
		m, err = h.db.MoveMediaUp(r.Context(), id)
	case "down":
		m, err = h.db.MoveMediaDown(r.Context(), id)
	default:
		writeJSONError(w, "Direction must be \"up\" or \"down\"", http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, database.ErrNotFound):
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	case errors.Is(err, database.ErrBoundary):
		writeJSONError(w, "Media is already at that position", http.StatusConflict)
		return
	case err != nil:
		logging.Error("failed to move media %d: %v", id, err)
		writeJSONError(w, "Failed to move media", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, m)
}
