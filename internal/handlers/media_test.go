package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"product-media/internal/database"
	"product-media/internal/mediatypes"
)

func seedMedia(t *testing.T, env *testEnv, productID int64, base string) *database.Media {
	t.Helper()

	row := &database.Media{
		ProductID:        productID,
		Type:             mediatypes.KindPhoto,
		Filename:         base + "_medium.jpg",
		OriginalFilename: "photo.jpg",
		FilenameThumb:    base + "_thumb.jpg",
		FilenameMedium:   base + "_medium.jpg",
		FilenameLarge:    base + "_large.jpg",
		FilenameOriginal: base + "_original.jpg",
	}
	m, err := env.db.CreateMedia(context.Background(), row)
	if err != nil {
		t.Fatalf("Failed to seed media: %v", err)
	}

	for _, name := range m.StoredFilenames() {
		if err := os.WriteFile(filepath.Join(env.uploadDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to seed file %s: %v", name, err)
		}
	}
	return m
}

func TestGetMediaHandler(t *testing.T) {
	env := newTestEnv(t)
	m := seedMedia(t, env, 1, "aaa")

	req := httptest.NewRequest(http.MethodGet, "/api/media/1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var got database.Media
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.ID != m.ID || got.Filename != m.Filename {
		t.Errorf("Got %+v, want %+v", got, m)
	}
}

func TestGetMediaHandlerNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/media/999", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", rec.Code)
	}
}

func TestListProductMediaHandler(t *testing.T) {
	env := newTestEnv(t)
	seedMedia(t, env, 1, "aaa")
	seedMedia(t, env, 1, "bbb")
	seedMedia(t, env, 2, "ccc")

	req := httptest.NewRequest(http.MethodGet, "/api/products/1/media", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var list []database.Media
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Got %d rows, want 2", len(list))
	}
}

func TestListProductMediaEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/42/media", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("Body = %q, want []", body)
	}
}

func TestListProductMediaInvalidTypeFilter(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/1/media?type=audio", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestUpdateMediaHandler(t *testing.T) {
	env := newTestEnv(t)
	m := seedMedia(t, env, 1, "aaa")

	body := strings.NewReader(`{"altText":"Oak dining table","isMain":true}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/media/1", body)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got, err := env.db.GetMedia(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMedia failed: %v", err)
	}
	if got.AltText != "Oak dining table" {
		t.Errorf("AltText = %q", got.AltText)
	}
	if !got.IsMain {
		t.Error("IsMain not set")
	}
}

func TestDeleteMediaHandlerRemovesFiles(t *testing.T) {
	env := newTestEnv(t)
	m := seedMedia(t, env, 1, "aaa")

	req := httptest.NewRequest(http.MethodDelete, "/api/media/1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Status = %d", rec.Code)
	}

	if _, err := env.db.GetMedia(context.Background(), m.ID); err == nil {
		t.Error("Row still exists after delete")
	}
	for _, name := range m.StoredFilenames() {
		if _, err := os.Stat(filepath.Join(env.uploadDir, name)); !os.IsNotExist(err) {
			t.Errorf("File %s still on disk after delete", name)
		}
	}
}

func TestMoveMediaHandler(t *testing.T) {
	env := newTestEnv(t)
	seedMedia(t, env, 1, "aaa")
	second := seedMedia(t, env, 1, "bbb")

	body := strings.NewReader(`{"direction":"up"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/media/2/move", body)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got, err := env.db.GetMedia(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetMedia failed: %v", err)
	}
	if got.SortOrder != 0 {
		t.Errorf("SortOrder = %d, want 0", got.SortOrder)
	}
}

func TestMoveMediaHandlerAtBoundary(t *testing.T) {
	env := newTestEnv(t)
	seedMedia(t, env, 1, "aaa")

	body := strings.NewReader(`{"direction":"up"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/media/1/move", body)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Status = %d, want 409", rec.Code)
	}
}

func TestMoveMediaHandlerBadDirection(t *testing.T) {
	env := newTestEnv(t)
	seedMedia(t, env, 1, "aaa")

	body := strings.NewReader(`{"direction":"sideways"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/media/1/move", body)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}
