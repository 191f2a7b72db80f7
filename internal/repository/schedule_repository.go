package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/asset-maintenance/internal/model"
)

// ScheduleRepo persists maintenance schedules.  Schedules have no user
// column; every user-scoped query joins through assets.user_id.  "Today"
// is always passed in by the caller so the SQL never reads the database
// clock.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *ScheduleRepo) DB() *sql.DB { return r.db }

// BeginTx starts a transaction for multi-row schedule writes.
func (r *ScheduleRepo) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

const scheduleSelect = `SELECT ms.id, ms.asset_id, ms.maintenance_type_id, ms.based_on_record_id,
       ms.scheduled_date, ms.status, ms.frequency_type, ms.frequency_value,
       ms.created_at, ms.updated_at,
       a.name, mt.name, mr.date_performed
FROM maintenance_schedules ms
JOIN assets a ON a.id = ms.asset_id
LEFT JOIN maintenance_types mt ON mt.id = ms.maintenance_type_id
LEFT JOIN maintenance_records mr ON mr.id = ms.based_on_record_id`

const scheduleOrder = ` ORDER BY ms.scheduled_date ASC, ms.created_at DESC, ms.id DESC`

func scanSchedule(row interface{ Scan(...any) error }) (*model.Schedule, error) {
	s := new(model.Schedule)
	err := row.Scan(
		&s.ID, &s.AssetID, &s.MaintenanceTypeID, &s.BasedOnRecordID,
		&s.ScheduledDate, &s.Status, &s.FrequencyType, &s.FrequencyValue,
		&s.CreatedAt, &s.UpdatedAt,
		&s.AssetName, &s.MaintenanceTypeName, &s.LastMaintenanceDate,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ScheduleRepo) list(ctx context.Context, q queryer, query string, args ...any) ([]*model.Schedule, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ScheduleRepo) getForUser(ctx context.Context, q queryer, id, userID uint64) (*model.Schedule, error) {
	s, err := scanSchedule(q.QueryRowContext(ctx, scheduleSelect+` WHERE ms.id = ? AND a.user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	return s, err
}

// GetForUser returns one schedule if its asset belongs to userID.
// ErrScheduleNotFound is returned otherwise.
func (r *ScheduleRepo) GetForUser(ctx context.Context, id, userID uint64) (*model.Schedule, error) {
	return r.getForUser(ctx, r.db, id, userID)
}

// GetForUserTx is GetForUser inside the caller's transaction.
func (r *ScheduleRepo) GetForUserTx(ctx context.Context, tx *sql.Tx, id, userID uint64) (*model.Schedule, error) {
	return r.getForUser(ctx, tx, id, userID)
}

// ListByUser returns every schedule of the user ordered by due date.
func (r *ScheduleRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Schedule, error) {
	return r.list(ctx, r.db, scheduleSelect+` WHERE a.user_id = ?`+scheduleOrder, userID)
}

// ListByAsset returns the schedules of a single asset owned by the user.
func (r *ScheduleRepo) ListByAsset(ctx context.Context, assetID, userID uint64) ([]*model.Schedule, error) {
	return r.list(ctx, r.db, scheduleSelect+` WHERE ms.asset_id = ? AND a.user_id = ?`+scheduleOrder, assetID, userID)
}

// ListUpcoming returns pending schedules due within [from, to] inclusive.
func (r *ScheduleRepo) ListUpcoming(ctx context.Context, userID uint64, from, to model.Date) ([]*model.Schedule, error) {
	return r.list(ctx, r.db, scheduleSelect+`
WHERE a.user_id = ? AND ms.status = ? AND ms.scheduled_date >= ? AND ms.scheduled_date <= ?`+scheduleOrder,
		userID, model.StatusPending, from, to)
}

// ListOverdue returns the schedules currently labelled overdue.
func (r *ScheduleRepo) ListOverdue(ctx context.Context, userID uint64) ([]*model.Schedule, error) {
	return r.list(ctx, r.db, scheduleSelect+` WHERE a.user_id = ? AND ms.status = ?`+scheduleOrder,
		userID, model.StatusOverdue)
}

func (r *ScheduleRepo) create(ctx context.Context, q queryer, s *model.Schedule) error {
	const ins = `INSERT INTO maintenance_schedules
       (asset_id, maintenance_type_id, based_on_record_id, scheduled_date, status, frequency_type, frequency_value)
       VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, ins,
		s.AssetID, s.MaintenanceTypeID, s.BasedOnRecordID, s.ScheduledDate, s.Status, s.FrequencyType, s.FrequencyValue)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	// read the row back to pick up timestamps and join columns
	fresh, err := scanSchedule(q.QueryRowContext(ctx, scheduleSelect+` WHERE ms.id = ?`, id))
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// Create inserts s and refreshes it with the stored row.  Ownership of
// the asset must have been checked by the caller.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	return r.create(ctx, r.db, s)
}

// CreateTx is Create inside the caller's transaction.
func (r *ScheduleRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Schedule) error {
	return r.create(ctx, tx, s)
}

// Update applies only the fields present in upd.  An empty update is a
// no-op.  The caller has already checked ownership.
func (r *ScheduleRepo) Update(ctx context.Context, id uint64, upd model.ScheduleUpdate) error {
	if upd.Empty() {
		return nil
	}
	sets := []string{}
	args := []any{}
	if upd.MaintenanceTypeID != nil {
		sets = append(sets, "maintenance_type_id = ?")
		args = append(args, *upd.MaintenanceTypeID)
	}
	if upd.ScheduledDate != nil {
		sets = append(sets, "scheduled_date = ?")
		args = append(args, *upd.ScheduledDate)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.FrequencyType != nil {
		sets = append(sets, "frequency_type = ?")
		args = append(args, *upd.FrequencyType)
	}
	if upd.FrequencyValue != nil {
		sets = append(sets, "frequency_value = ?")
		args = append(args, *upd.FrequencyValue)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	q := `UPDATE maintenance_schedules SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// MarkCompletedTx flips a non-completed schedule to completed.  The
// status guard in the WHERE clause makes concurrent completions of the
// same row serialise: the loser sees zero affected rows and gets
// ErrScheduleAlreadyCompleted.
func (r *ScheduleRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE maintenance_schedules SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status <> ?`,
		model.StatusCompleted, id, model.StatusCompleted)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScheduleAlreadyCompleted
	}
	return nil
}

// DeleteForUser removes a schedule whose asset belongs to userID.
func (r *ScheduleRepo) DeleteForUser(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM maintenance_schedules WHERE id = ? AND asset_id IN (SELECT id FROM assets WHERE user_id = ?)`,
		id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// MarkOverdue moves the user's pending schedules dated before today to
// overdue and returns how many rows changed.  Running it again with the
// same today changes nothing.
func (r *ScheduleRepo) MarkOverdue(ctx context.Context, userID uint64, today model.Date) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE maintenance_schedules
SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE status = ? AND scheduled_date < ?
  AND asset_id IN (SELECT id FROM assets WHERE user_id = ?)`,
		model.StatusOverdue, model.StatusPending, today, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats counts the user's schedules by status.  The upcoming counters
// include pending rows due no later than today+7 and today+30 days.
func (r *ScheduleRepo) Stats(ctx context.Context, userID uint64, today model.Date) (*model.ScheduleStats, error) {
	const q = `SELECT
  COUNT(*),
  COUNT(CASE WHEN ms.status = 'pending' THEN 1 END),
  COUNT(CASE WHEN ms.status = 'completed' THEN 1 END),
  COUNT(CASE WHEN ms.status = 'overdue' THEN 1 END),
  COUNT(CASE WHEN ms.status = 'pending' AND ms.scheduled_date <= ? THEN 1 END),
  COUNT(CASE WHEN ms.status = 'pending' AND ms.scheduled_date <= ? THEN 1 END)
FROM maintenance_schedules ms
JOIN assets a ON a.id = ms.asset_id
WHERE a.user_id = ?`
	var st model.ScheduleStats
	err := r.db.QueryRowContext(ctx, q, today.AddDays(7), today.AddDays(30), userID).Scan(
		&st.TotalSchedules, &st.Pending, &st.Completed, &st.Overdue, &st.UpcomingWeek, &st.UpcomingMonth)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
