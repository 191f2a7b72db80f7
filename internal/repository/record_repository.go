package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/asset-maintenance/internal/model"
)

// RecordRepo stores performed maintenance.  Records have no user column;
// ownership goes through the asset like schedules do.
type RecordRepo struct {
	db *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

const recordSelect = `SELECT mr.id, mr.asset_id, mr.maintenance_type_id, mr.date_performed, mr.notes, mr.cost_cents,
       mr.created_at, mr.updated_at, a.name
FROM maintenance_records mr
JOIN assets a ON a.id = mr.asset_id`

func scanRecord(row interface{ Scan(...any) error }) (*model.MaintenanceRecord, error) {
	var m model.MaintenanceRecord
	err := row.Scan(&m.ID, &m.AssetID, &m.MaintenanceTypeID, &m.DatePerformed, &m.Notes, &m.CostCents,
		&m.CreatedAt, &m.UpdatedAt, &m.AssetName)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a record.  Ownership of the asset and type must have
// been checked by the caller.
func (r *RecordRepo) Create(ctx context.Context, m *model.MaintenanceRecord) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO maintenance_records (asset_id, maintenance_type_id, date_performed, notes, cost_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		m.AssetID, m.MaintenanceTypeID, m.DatePerformed, m.Notes, m.CostCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := scanRecord(r.db.QueryRowContext(ctx, recordSelect+" WHERE mr.id = ?", id))
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

const recordOrder = " ORDER BY mr.date_performed DESC, mr.id DESC"

// ListByUser returns the user's records, newest work first.
func (r *RecordRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.MaintenanceRecord, error) {
	return r.list(ctx, recordSelect+" WHERE a.user_id = ?"+recordOrder, userID)
}

// ListByAsset returns the records of one of the user's assets.
func (r *RecordRepo) ListByAsset(ctx context.Context, assetID, userID uint64) ([]*model.MaintenanceRecord, error) {
	return r.list(ctx, recordSelect+" WHERE mr.asset_id = ? AND a.user_id = ?"+recordOrder, assetID, userID)
}

func (r *RecordRepo) list(ctx context.Context, q string, args ...any) ([]*model.MaintenanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.MaintenanceRecord{}
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *RecordRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.MaintenanceRecord, error) {
	m, err := scanRecord(r.db.QueryRowContext(ctx, recordSelect+" WHERE mr.id = ? AND a.user_id = ?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return m, err
}

// ExistsForUser reports whether the record exists and its asset belongs
// to userID.
func (r *RecordRepo) ExistsForUser(ctx context.Context, id, userID uint64) (bool, error) {
	return exists(ctx, r.db,
		"SELECT 1 FROM maintenance_records mr JOIN assets a ON a.id = mr.asset_id WHERE mr.id = ? AND a.user_id = ?",
		id, userID)
}
