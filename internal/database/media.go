package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"product-media/internal/mediatypes"
)

// ErrNotFound indicates the requested media row does not exist.
var ErrNotFound = errors.New("media not found")

// ErrBoundary indicates a sort-order move has no neighbor in the
// requested direction (already first or last).
var ErrBoundary = errors.New("media already at boundary position")

const mediaColumns = `id, product_id, type, filename, original_filename,
	file_size, mime_type, alt_text, sort_order, is_main,
	filename_thumb, filename_medium, filename_large, filename_original, created_at`

// CreateMedia inserts a media row, assigning the next sort_order within
// the product's gallery, and returns the stored row.
func (d *Database) CreateMedia(ctx context.Context, m *Media) (*Media, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_media", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(execCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var sortOrder int
	err = tx.QueryRowContext(execCtx,
		"SELECT COALESCE(MAX(sort_order) + 1, 0) FROM media WHERE product_id = ?",
		m.ProductID,
	).Scan(&sortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sort order: %w", err)
	}

	result, err := tx.ExecContext(execCtx, `
		INSERT INTO media (product_id, type, filename, original_filename,
			file_size, mime_type, alt_text, sort_order, is_main,
			filename_thumb, filename_medium, filename_large, filename_original)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ProductID, string(m.Type), m.Filename, nullable(m.OriginalFilename),
		nullableInt(m.FileSize), nullable(m.MimeType), nullable(m.AltText),
		sortOrder, m.IsMain,
		nullable(m.FilenameThumb), nullable(m.FilenameMedium),
		nullable(m.FilenameLarge), nullable(m.FilenameOriginal),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert media: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit media insert: %w", err)
	}

	return d.getMediaLocked(execCtx, id)
}

// GetMedia returns one media row by id.
func (d *Database) GetMedia(ctx context.Context, id int64) (*Media, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_media", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m *Media
	m, err = d.getMediaLocked(queryCtx, id)
	return m, err
}

func (d *Database) getMediaLocked(ctx context.Context, id int64) (*Media, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+mediaColumns+" FROM media WHERE id = ?", id)

	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// ListMediaByProduct returns a product's media ordered by sort_order.
// If kind is non-empty only rows of that type are returned.
func (d *Database) ListMediaByProduct(ctx context.Context, productID int64, kind mediatypes.Kind) ([]Media, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_media", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := "SELECT " + mediaColumns + " FROM media WHERE product_id = ?"
	args := []interface{}{productID}
	if kind != "" {
		query += " AND type = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY sort_order ASC"

	rows, err := d.db.QueryContext(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	var out []Media
	for rows.Next() {
		m, scanErr := scanMedia(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		out = append(out, *m)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMedia applies the non-nil fields of patch to a media row and
// returns the updated row.
func (d *Database) UpdateMedia(ctx context.Context, id int64, patch MediaPatch) (*Media, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_media", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var sets []string
	var args []interface{}
	if patch.AltText != nil {
		sets = append(sets, "alt_text = ?")
		args = append(args, *patch.AltText)
	}
	if patch.IsMain != nil {
		sets = append(sets, "is_main = ?")
		args = append(args, *patch.IsMain)
	}
	if len(sets) == 0 {
		return d.getMediaLocked(execCtx, id)
	}

	args = append(args, id)
	query := "UPDATE media SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE id = ?"

	result, err := d.db.ExecContext(execCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update media: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		err = ErrNotFound
		return nil, err
	}

	return d.getMediaLocked(execCtx, id)
}

// DeleteMedia removes a media row. The caller is responsible for removing
// the row's files from disk (see Media.StoredFilenames).
func (d *Database) DeleteMedia(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_media", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(execCtx, "DELETE FROM media WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

// MoveMediaUp swaps the row's sort_order with its previous sibling in the
// same product gallery. Returns ErrBoundary when already first.
func (d *Database) MoveMediaUp(ctx context.Context, id int64) (*Media, error) {
	return d.swapSortOrder(ctx, id, true)
}

// MoveMediaDown swaps the row's sort_order with its next sibling in the
// same product gallery. Returns ErrBoundary when already last.
func (d *Database) MoveMediaDown(ctx context.Context, id int64) (*Media, error) {
	return d.swapSortOrder(ctx, id, false)
}

func (d *Database) swapSortOrder(ctx context.Context, id int64, up bool) (*Media, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("swap_sort_order", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(execCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var productID int64
	var sortOrder int
	err = tx.QueryRowContext(execCtx,
		"SELECT product_id, sort_order FROM media WHERE id = ?", id,
	).Scan(&productID, &sortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	// Find the neighbor to swap with.
	neighborQuery := `SELECT id, sort_order FROM media
		WHERE product_id = ? AND sort_order > ?
		ORDER BY sort_order ASC LIMIT 1`
	if up {
		neighborQuery = `SELECT id, sort_order FROM media
			WHERE product_id = ? AND sort_order < ?
			ORDER BY sort_order DESC LIMIT 1`
	}

	var neighborID int64
	var neighborOrder int
	err = tx.QueryRowContext(execCtx, neighborQuery, productID, sortOrder).
		Scan(&neighborID, &neighborOrder)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrBoundary
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(execCtx,
		"UPDATE media SET sort_order = ? WHERE id = ?", neighborOrder, id); err != nil {
		return nil, fmt.Errorf("failed to move media: %w", err)
	}
	if _, err = tx.ExecContext(execCtx,
		"UPDATE media SET sort_order = ? WHERE id = ?", sortOrder, neighborID); err != nil {
		return nil, fmt.Errorf("failed to move neighbor: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sort order swap: %w", err)
	}

	return d.getMediaLocked(execCtx, id)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMedia(row scanner) (*Media, error) {
	var m Media
	var kind string
	var originalFilename, mimeType, altText sql.NullString
	var thumb, medium, large, original sql.NullString
	var fileSize sql.NullInt64
	var createdAt int64

	err := row.Scan(&m.ID, &m.ProductID, &kind, &m.Filename, &originalFilename,
		&fileSize, &mimeType, &altText, &m.SortOrder, &m.IsMain,
		&thumb, &medium, &large, &original, &createdAt)
	if err != nil {
		return nil, err
	}

	m.Type = mediatypes.Kind(kind)
	m.OriginalFilename = originalFilename.String
	m.FileSize = fileSize.Int64
	m.MimeType = mimeType.String
	m.AltText = altText.String
	m.FilenameThumb = thumb.String
	m.FilenameMedium = medium.String
	m.FilenameLarge = large.String
	m.FilenameOriginal = original.String
	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int64) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
