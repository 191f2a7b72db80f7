package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/asset-maintenance/internal/model"
)

// AssetRepo encapsulates all database queries related to assets.  It is
// also the asset registry of the scheduling engine.
type AssetRepo struct {
	db *sql.DB
}

// NewAssetRepo constructs an AssetRepo with the provided DB handle.
func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{db: db}
}

const assetSelect = "SELECT id, user_id, name, description, location, status, created_at, updated_at FROM assets"

func scanAsset(row interface{ Scan(...any) error }) (*model.Asset, error) {
	var a model.Asset
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Description, &a.Location, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new asset.  On success a is refreshed from the stored
// row so timestamps and defaults are populated.
func (r *AssetRepo) Create(ctx context.Context, a *model.Asset) error {
	if a.Status == "" {
		a.Status = model.AssetActive
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO assets (user_id, name, description, location, status) VALUES (?, ?, ?, ?, ?)",
		a.UserID, a.Name, a.Description, a.Location, a.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := scanAsset(r.db.QueryRowContext(ctx, assetSelect+" WHERE id = ?", id))
	if err != nil {
		return err
	}
	*a = *fresh
	return nil
}

// GetByIDAndUser fetches an asset only if it belongs to userID.
func (r *AssetRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Asset, error) {
	a, err := scanAsset(r.db.QueryRowContext(ctx, assetSelect+" WHERE id = ? AND user_id = ?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	return a, err
}

// ListByUser returns the user's assets ordered by name.
func (r *AssetRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Asset, error) {
	rows, err := r.db.QueryContext(ctx, assetSelect+" WHERE user_id = ? ORDER BY name, id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteByIDAndUser removes an asset; its schedules and records go with it.
func (r *AssetRepo) DeleteByIDAndUser(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM assets WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// ExistsForUser reports whether the asset exists and belongs to userID.
func (r *AssetRepo) ExistsForUser(ctx context.Context, id, userID uint64) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM assets WHERE id = ? AND user_id = ?", id, userID)
}
