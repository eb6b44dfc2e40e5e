package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"product-media/internal/database"
	"product-media/internal/logging"
	"product-media/internal/mediatypes"
	"product-media/internal/metrics"
	"product-media/internal/pipeline"
)

// multipartMemory caps how much of an upload is buffered in memory
// before spilling to disk.
const multipartMemory = 32 << 20 // 32MB

// UploadResult is the per-file outcome of a batch upload.
type UploadResult struct {
	OriginalFilename string          `json:"originalFilename"`
	Media            *database.Media `json:"media,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// UploadMedia handles POST /api/products/{productId}/media with a single
// "file" form field. The variant set is generated before the database row
// is written; if the row cannot be written, the generated files are
// removed again.
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(mux.Vars(r)["productId"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeJSONError(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	defer cleanupMultipart(r)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	m, status, err := h.processUpload(r, productID, file, header)
	if err != nil {
		writeJSONError(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, m)
}

// UploadMediaBatch handles POST /api/products/{productId}/media/batch
// with repeated "files" form fields. Files are processed concurrently by
// a bounded worker pool; results come back in input order, and one bad
// file does not fail the rest.
func (h *Handlers) UploadMediaBatch(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(mux.Vars(r)["productId"], 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeJSONError(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	defer cleanupMultipart(r)

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSONError(w, "Missing files field", http.StatusBadRequest)
		return
	}

	results := make([]UploadResult, len(headers))
	sem := make(chan struct{}, h.uploadWorkers)
	var wg sync.WaitGroup

	for i, header := range headers {
		wg.Add(1)
		go func(i int, header *multipart.FileHeader) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = UploadResult{OriginalFilename: header.Filename}

			file, err := header.Open()
			if err != nil {
				results[i].Error = "Failed to read file"
				return
			}
			defer file.Close()

			m, _, err := h.processUpload(r, productID, file, header)
			if err != nil {
				results[i].Error = err.Error()
				return
			}
			results[i].Media = m
		}(i, header)
	}
	wg.Wait()

	status := http.StatusCreated
	for _, result := range results {
		if result.Error != "" {
			// Partial success still returns 207 so clients inspect
			// each entry.
			status = http.StatusMultiStatus
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, results)
}

// processUpload spools one multipart file to disk, runs it through the
// variant pipeline, and records the result. Returns the HTTP status to
// use on error.
func (h *Handlers) processUpload(r *http.Request, productID int64, file multipart.File, header *multipart.FileHeader) (*database.Media, int, error) {
	if header.Size > h.maxUploadSize {
		return nil, http.StatusRequestEntityTooLarge,
			fmt.Errorf("file exceeds the %dMB upload limit", h.maxUploadSize/(1024*1024))
	}

	kind, err := mediatypes.Classify(header.Header.Get("Content-Type"))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("unknown", "rejected").Inc()
		return nil, http.StatusBadRequest, err
	}

	// Decoding large photos is a heap burst; wait out memory pressure
	// before starting another pipeline run.
	if !h.mem.WaitIfPaused() {
		return nil, http.StatusServiceUnavailable, fmt.Errorf("server is shutting down")
	}

	tempFile, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to spool upload")
	}
	tempPath := tempFile.Name()
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove spool file %s: %v", tempPath, err)
		}
	}()

	if _, err := io.Copy(tempFile, file); err != nil {
		tempFile.Close()
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to spool upload")
	}
	if err := tempFile.Close(); err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to spool upload")
	}

	asset, tracker, err := h.pipe.Run(tempPath, header.Filename, kind)
	if err != nil {
		logging.Warn("upload pipeline failed for %s: %v", header.Filename, err)
		return nil, uploadErrorStatus(err), err
	}

	m, err := h.db.CreateMedia(r.Context(), &database.Media{
		ProductID:        productID,
		Type:             kind,
		Filename:         asset.PrimaryFilename,
		OriginalFilename: header.Filename,
		FileSize:         header.Size,
		MimeType:         header.Header.Get("Content-Type"),
		FilenameThumb:    asset.Variants[pipeline.VariantThumb],
		FilenameMedium:   asset.Variants[pipeline.VariantMedium],
		FilenameLarge:    asset.Variants[pipeline.VariantLarge],
		FilenameOriginal: asset.Variants[pipeline.VariantOriginal],
	})
	if err != nil {
		// The variant files are orphans without a row pointing at them.
		tracker.Cleanup()
		logging.Error("failed to record media row: %v", err)
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to record media")
	}
	tracker.Discard()

	logging.Info("Stored %s media %d for product %d (%d variants)",
		kind, m.ID, productID, len(asset.Variants))
	return m, 0, nil
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("failed to clean multipart temp files: %v", err)
		}
	}
}
