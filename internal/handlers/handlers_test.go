package handlers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"product-media/internal/database"
	"product-media/internal/memory"
	"product-media/internal/pipeline"
	"product-media/internal/startup"
)

type testEnv struct {
	handlers  *Handlers
	db        *database.Database
	router    *mux.Router
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	uploadDir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	config := &startup.Config{
		UploadDir:       uploadDir,
		MaxUploadMB:     100,
		UploadWorkerCap: 4,
	}
	mem := memory.NewMonitor(memory.Config{MemoryLimitBytes: 1 << 40})
	t.Cleanup(mem.Stop)
	h := New(db, pipeline.New(uploadDir, nil), mem, config)

	router := mux.NewRouter()
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/version", h.GetVersion).Methods("GET")
	router.HandleFunc("/api/auth/setup-required", h.CheckSetupRequired).Methods("GET")
	router.HandleFunc("/api/auth/setup", h.Setup).Methods("POST")
	router.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	router.HandleFunc("/api/auth/logout", h.Logout).Methods("POST")
	router.HandleFunc("/api/auth/check", h.CheckAuth).Methods("GET")
	router.HandleFunc("/api/products/{productId}/media", h.UploadMedia).Methods("POST")
	router.HandleFunc("/api/products/{productId}/media/batch", h.UploadMediaBatch).Methods("POST")
	router.HandleFunc("/api/products/{productId}/media", h.ListProductMedia).Methods("GET")
	router.HandleFunc("/api/media/{id}", h.GetMedia).Methods("GET")
	router.HandleFunc("/api/media/{id}", h.UpdateMedia).Methods("PATCH")
	router.HandleFunc("/api/media/{id}", h.DeleteMedia).Methods("DELETE")
	router.HandleFunc("/api/media/{id}/move", h.MoveMedia).Methods("POST")

	return &testEnv{
		handlers:  h,
		db:        db,
		router:    router,
		uploadDir: uploadDir,
	}
}

// encodeTestJPEG returns a solid-color JPEG of the given dimensions.
func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{120, 60, 30, 255}), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

type uploadPart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// multipartBody builds a multipart request body from the given parts and
// returns it with the matching Content-Type header value.
func multipartBody(t *testing.T, parts []uploadPart) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, p := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		header.Set("Content-Type", p.contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("Failed to create multipart part: %v", err)
		}
		if _, err := part.Write(p.data); err != nil {
			t.Fatalf("Failed to write multipart part: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func newUploadRequest(t *testing.T, url string, parts []uploadPart) *http.Request {
	t.Helper()

	body, contentType := multipartBody(t, parts)
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	return req
}
