package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/asset-maintenance/internal/model"
)

// MaintenanceTypeRepo stores the user's maintenance categories.
type MaintenanceTypeRepo struct {
	db *sql.DB
}

func NewMaintenanceTypeRepo(db *sql.DB) *MaintenanceTypeRepo {
	return &MaintenanceTypeRepo{db: db}
}

const typeSelect = "SELECT id, user_id, name, description, is_default, created_at, updated_at FROM maintenance_types"

func scanType(row interface{ Scan(...any) error }) (*model.MaintenanceType, error) {
	var t model.MaintenanceType
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *MaintenanceTypeRepo) Create(ctx context.Context, t *model.MaintenanceType) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO maintenance_types (user_id, name, description, is_default) VALUES (?, ?, ?, ?)",
		t.UserID, t.Name, t.Description, t.IsDefault)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := scanType(r.db.QueryRowContext(ctx, typeSelect+" WHERE id = ?", id))
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}

func (r *MaintenanceTypeRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.MaintenanceType, error) {
	rows, err := r.db.QueryContext(ctx, typeSelect+" WHERE user_id = ? ORDER BY name, id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.MaintenanceType{}
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *MaintenanceTypeRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.MaintenanceType, error) {
	t, err := scanType(r.db.QueryRowContext(ctx, typeSelect+" WHERE id = ? AND user_id = ?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTypeNotFound
	}
	return t, err
}

// DeleteByIDAndUser removes a type.  Schedules and records that used it
// keep existing with a NULL type.
func (r *MaintenanceTypeRepo) DeleteByIDAndUser(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM maintenance_types WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTypeNotFound
	}
	return nil
}

// ExistsForUser reports whether the type exists and belongs to userID.
func (r *MaintenanceTypeRepo) ExistsForUser(ctx context.Context, id, userID uint64) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM maintenance_types WHERE id = ? AND user_id = ?", id, userID)
}

// DefaultTypes are seeded by CreateDefaults.
var DefaultTypes = []struct{ Name, Description string }{
	{"Oil change", "Engine oil and filter change"},
	{"General inspection", "Full inspection of the equipment"},
	{"Lubrication", "Lubrication of moving parts"},
	{"Cleaning", "General cleaning and visual check"},
	{"Calibration", "Calibration of instruments and sensors"},
}

// CreateDefaults inserts DefaultTypes for the user in one transaction and
// returns the created rows.
func (r *MaintenanceTypeRepo) CreateDefaults(ctx context.Context, userID uint64) ([]*model.MaintenanceType, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(DefaultTypes))
	for _, d := range DefaultTypes {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO maintenance_types (user_id, name, description, is_default) VALUES (?, ?, ?, ?)",
			userID, d.Name, d.Description, true)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	out := make([]*model.MaintenanceType, 0, len(ids))
	for _, id := range ids {
		t, err := scanType(tx.QueryRowContext(ctx, typeSelect+" WHERE id = ?", id))
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}
