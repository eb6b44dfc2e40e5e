package database

import (
	"context"
	"errors"
	"testing"

	"product-media/internal/mediatypes"
)

func insertTestMedia(t *testing.T, db *Database, productID int64, filename string) *Media {
	t.Helper()

	m, err := db.CreateMedia(context.Background(), &Media{
		ProductID:        productID,
		Type:             mediatypes.KindPhoto,
		Filename:         filename,
		OriginalFilename: "sofa.jpg",
		FileSize:         12345,
		MimeType:         "image/jpeg",
		FilenameThumb:    "t_" + filename,
		FilenameMedium:   filename,
		FilenameLarge:    "l_" + filename,
		FilenameOriginal: "o_" + filename,
	})
	if err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}
	return m
}

func TestCreateMediaAssignsSequentialSortOrder(t *testing.T) {
	db := setupTestDB(t)

	first := insertTestMedia(t, db, 1, "a_medium.jpg")
	second := insertTestMedia(t, db, 1, "b_medium.jpg")
	other := insertTestMedia(t, db, 2, "c_medium.jpg")

	if first.SortOrder != 0 {
		t.Errorf("First media sort_order = %d, want 0", first.SortOrder)
	}
	if second.SortOrder != 1 {
		t.Errorf("Second media sort_order = %d, want 1", second.SortOrder)
	}
	// Sort order is per product, not global.
	if other.SortOrder != 0 {
		t.Errorf("Other product's first media sort_order = %d, want 0", other.SortOrder)
	}
}

func TestGetMedia(t *testing.T) {
	db := setupTestDB(t)
	created := insertTestMedia(t, db, 1, "a_medium.jpg")

	got, err := db.GetMedia(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetMedia failed: %v", err)
	}
	if got.Filename != "a_medium.jpg" {
		t.Errorf("Filename = %q, want a_medium.jpg", got.Filename)
	}
	if got.Type != mediatypes.KindPhoto {
		t.Errorf("Type = %q, want photo", got.Type)
	}
	if got.FilenameThumb != "t_a_medium.jpg" {
		t.Errorf("FilenameThumb = %q", got.FilenameThumb)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestGetMediaNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetMedia(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMedia error = %v, want ErrNotFound", err)
	}
}

func TestListMediaByProduct(t *testing.T) {
	db := setupTestDB(t)
	insertTestMedia(t, db, 1, "a_medium.jpg")
	insertTestMedia(t, db, 1, "b_medium.jpg")
	insertTestMedia(t, db, 2, "c_medium.jpg")

	list, err := db.ListMediaByProduct(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("ListMediaByProduct failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Got %d rows, want 2", len(list))
	}
	if list[0].SortOrder > list[1].SortOrder {
		t.Error("List not ordered by sort_order")
	}
}

func TestListMediaByProductFiltersByKind(t *testing.T) {
	db := setupTestDB(t)
	insertTestMedia(t, db, 1, "a_medium.jpg")

	_, err := db.CreateMedia(context.Background(), &Media{
		ProductID: 1,
		Type:      mediatypes.KindVideo,
		Filename:  "v_original.mp4",
	})
	if err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}

	videos, err := db.ListMediaByProduct(context.Background(), 1, mediatypes.KindVideo)
	if err != nil {
		t.Fatalf("ListMediaByProduct failed: %v", err)
	}
	if len(videos) != 1 || videos[0].Type != mediatypes.KindVideo {
		t.Errorf("Expected exactly one video row, got %+v", videos)
	}
}

func TestUpdateMediaPatchesOnlyProvidedFields(t *testing.T) {
	db := setupTestDB(t)
	created := insertTestMedia(t, db, 1, "a_medium.jpg")

	alt := "Green velvet sofa, front view"
	updated, err := db.UpdateMedia(context.Background(), created.ID, MediaPatch{AltText: &alt})
	if err != nil {
		t.Fatalf("UpdateMedia failed: %v", err)
	}
	if updated.AltText != alt {
		t.Errorf("AltText = %q, want %q", updated.AltText, alt)
	}
	if updated.IsMain != created.IsMain {
		t.Error("IsMain changed by an alt-text-only patch")
	}

	isMain := true
	updated, err = db.UpdateMedia(context.Background(), created.ID, MediaPatch{IsMain: &isMain})
	if err != nil {
		t.Fatalf("UpdateMedia failed: %v", err)
	}
	if !updated.IsMain {
		t.Error("IsMain not updated")
	}
	if updated.AltText != alt {
		t.Error("AltText lost by an is-main-only patch")
	}
}

func TestUpdateMediaNotFound(t *testing.T) {
	db := setupTestDB(t)

	alt := "x"
	_, err := db.UpdateMedia(context.Background(), 9999, MediaPatch{AltText: &alt})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateMedia error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMedia(t *testing.T) {
	db := setupTestDB(t)
	created := insertTestMedia(t, db, 1, "a_medium.jpg")

	if err := db.DeleteMedia(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteMedia failed: %v", err)
	}
	if _, err := db.GetMedia(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMedia after delete = %v, want ErrNotFound", err)
	}
	if err := db.DeleteMedia(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Second delete = %v, want ErrNotFound", err)
	}
}

func TestMoveMediaSwapsWithNeighbor(t *testing.T) {
	db := setupTestDB(t)
	first := insertTestMedia(t, db, 1, "a_medium.jpg")
	second := insertTestMedia(t, db, 1, "b_medium.jpg")

	moved, err := db.MoveMediaUp(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("MoveMediaUp failed: %v", err)
	}
	if moved.SortOrder != 0 {
		t.Errorf("Moved sort_order = %d, want 0", moved.SortOrder)
	}

	other, err := db.GetMedia(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetMedia failed: %v", err)
	}
	if other.SortOrder != 1 {
		t.Errorf("Neighbor sort_order = %d, want 1", other.SortOrder)
	}

	// Moving back down restores the original order.
	moved, err = db.MoveMediaDown(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("MoveMediaDown failed: %v", err)
	}
	if moved.SortOrder != 1 {
		t.Errorf("Sort order after move down = %d, want 1", moved.SortOrder)
	}
}

func TestMoveMediaAtBoundary(t *testing.T) {
	db := setupTestDB(t)
	first := insertTestMedia(t, db, 1, "a_medium.jpg")
	second := insertTestMedia(t, db, 1, "b_medium.jpg")

	if _, err := db.MoveMediaUp(context.Background(), first.ID); !errors.Is(err, ErrBoundary) {
		t.Errorf("MoveMediaUp at top = %v, want ErrBoundary", err)
	}
	if _, err := db.MoveMediaDown(context.Background(), second.ID); !errors.Is(err, ErrBoundary) {
		t.Errorf("MoveMediaDown at bottom = %v, want ErrBoundary", err)
	}
}

func TestMoveMediaNotFound(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.MoveMediaUp(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("MoveMediaUp = %v, want ErrNotFound", err)
	}
}

func TestStoredFilenamesDeduplicates(t *testing.T) {
	m := &Media{
		Filename:         "abc_medium.jpg",
		FilenameThumb:    "abc_thumb.jpg",
		FilenameMedium:   "abc_medium.jpg",
		FilenameLarge:    "abc_large.jpg",
		FilenameOriginal: "abc_original.jpg",
	}

	names := m.StoredFilenames()
	if len(names) != 4 {
		t.Fatalf("Got %d filenames, want 4: %v", len(names), names)
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("Duplicate filename %q", n)
		}
		seen[n] = true
	}
}
