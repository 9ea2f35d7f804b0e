package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/dbx"
)

// SliceRepository persists named store slices as JSON documents.
type SliceRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSliceRepository(db dbx.DBTX) *SliceRepository {
	return &SliceRepository{db: db, now: time.Now}
}

// Save marshals v and upserts it under name.
func (r *SliceRepository) Save(ctx context.Context, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode slice[%s]: %w", name, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO slices (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, name, payload, r.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save slice[%s]: %w", name, err)
	}
	return nil
}

// Load unmarshals the slice into v. It reports false when nothing is stored.
func (r *SliceRepository) Load(ctx context.Context, name string, v any) (bool, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM slices WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load slice[%s]: %w", name, err)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return false, fmt.Errorf("failed to decode slice[%s]: %w", name, err)
	}
	return true, nil
}

func (r *SliceRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM slices WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete slice[%s]: %w", name, err)
	}
	return nil
}
