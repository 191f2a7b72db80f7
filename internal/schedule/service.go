// Package schedule is the maintenance scheduling engine.  It owns the
// recurrence rules, the lazy pending→overdue reconciliation and the
// completion transaction that closes a schedule and opens its successor.
// Persistence and the neighbouring registries are reached through the
// small interfaces declared here so the engine can be tested against any
// store.
package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/asset-maintenance/internal/metrics"
	"github.com/iliyamo/asset-maintenance/internal/model"
	"github.com/iliyamo/asset-maintenance/internal/repository"
)

// Store is the schedule persistence the engine needs.  It is implemented
// by repository.ScheduleRepo.
type Store interface {
	Create(ctx context.Context, s *model.Schedule) error
	GetForUser(ctx context.Context, id, userID uint64) (*model.Schedule, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Schedule, error)
	ListByAsset(ctx context.Context, assetID, userID uint64) ([]*model.Schedule, error)
	ListUpcoming(ctx context.Context, userID uint64, from, to model.Date) ([]*model.Schedule, error)
	ListOverdue(ctx context.Context, userID uint64) ([]*model.Schedule, error)
	Stats(ctx context.Context, userID uint64, today model.Date) (*model.ScheduleStats, error)
	Update(ctx context.Context, id uint64, upd model.ScheduleUpdate) error
	DeleteForUser(ctx context.Context, id, userID uint64) error
	MarkOverdue(ctx context.Context, userID uint64, today model.Date) (int64, error)

	BeginTx(ctx context.Context) (*sql.Tx, error)
	GetForUserTx(ctx context.Context, tx *sql.Tx, id, userID uint64) (*model.Schedule, error)
	MarkCompletedTx(ctx context.Context, tx *sql.Tx, id uint64) error
	CreateTx(ctx context.Context, tx *sql.Tx, s *model.Schedule) error
}

// AssetRegistry answers assetExists(assetId, userId).
type AssetRegistry interface {
	ExistsForUser(ctx context.Context, assetID, userID uint64) (bool, error)
}

// TypeRegistry answers typeExists(typeId, userId).
type TypeRegistry interface {
	ExistsForUser(ctx context.Context, typeID, userID uint64) (bool, error)
}

// RecordRegistry answers recordExists(recordId, userId).
type RecordRegistry interface {
	ExistsForUser(ctx context.Context, recordID, userID uint64) (bool, error)
}

// Completion describes a committed completion transaction.
type Completion struct {
	UserID      uint64
	RecordID    uint64
	Completed   *model.Schedule
	Next        *model.Schedule
	CompletedOn model.Date
}

// Notifier is told about completions after they commit.  It must not
// block the request for long and its failures never undo the commit.
type Notifier interface {
	ScheduleCompleted(ctx context.Context, c Completion)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) ScheduleCompleted(context.Context, Completion) {}

// CreateInput is the payload of createSchedule.
type CreateInput struct {
	AssetID           uint64
	MaintenanceTypeID *uint64
	BasedOnRecordID   *uint64
	FrequencyType     model.FrequencyType
	FrequencyValue    int
	ScheduledDate     *model.Date
}

// MaxUpcomingDays bounds the upcoming window.
const MaxUpcomingDays = 365

// Service is the scheduling engine.
type Service struct {
	store    Store
	assets   AssetRegistry
	types    TypeRegistry
	records  RecordRegistry
	clock    Clock
	notifier Notifier
	log      logrus.FieldLogger
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the system clock.
func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

// WithNotifier installs a completion notifier.
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithLogger replaces the standard logrus logger.
func WithLogger(l logrus.FieldLogger) Option { return func(s *Service) { s.log = l } }

// NewService wires the engine to its store and registries.
func NewService(store Store, assets AssetRegistry, types TypeRegistry, records RecordRegistry, opts ...Option) *Service {
	s := &Service{
		store:    store,
		assets:   assets,
		types:    types,
		records:  records,
		clock:    SystemClock{},
		notifier: NopNotifier{},
		log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today returns the engine's current date.
func (s *Service) Today() model.Date { return s.clock.Today() }

// Reconcile moves the user's pending schedules whose date is before today
// to overdue and returns how many rows changed.
func (s *Service) Reconcile(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.store.MarkOverdue(ctx, userID, s.clock.Today())
	if err != nil {
		return 0, fmt.Errorf("reconcile overdue: %w", err)
	}
	if n > 0 {
		metrics.OverdueTransitions.Add(float64(n))
		s.log.WithFields(logrus.Fields{"user_id": userID, "count": n}).Debug("schedules marked overdue")
	}
	return n, nil
}

func validateFrequency(unit model.FrequencyType, magnitude int) error {
	if !unit.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownFrequency, unit)
	}
	if magnitude <= 0 {
		return invalid("frequency_value must be greater than zero")
	}
	if magnitude > MaxFrequencyValue {
		return invalid("frequency_value must be at most %d", MaxFrequencyValue)
	}
	return nil
}

func (s *Service) checkOwned(ctx context.Context, reg interface {
	ExistsForUser(context.Context, uint64, uint64) (bool, error)
}, id, userID uint64, entity string) error {
	ok, err := reg.ExistsForUser(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("check %s: %w", entity, err)
	}
	if !ok {
		return invalidReference(entity)
	}
	return nil
}

// Create validates in and inserts a pending schedule.  When no date is
// supplied the first due date is one period after today.
func (s *Service) Create(ctx context.Context, userID uint64, in CreateInput) (*model.Schedule, error) {
	if in.AssetID == 0 {
		return nil, invalid("asset_id is required")
	}
	if err := validateFrequency(in.FrequencyType, in.FrequencyValue); err != nil {
		return nil, err
	}

	if err := s.checkOwned(ctx, s.assets, in.AssetID, userID, "asset"); err != nil {
		return nil, err
	}
	if in.MaintenanceTypeID != nil {
		if err := s.checkOwned(ctx, s.types, *in.MaintenanceTypeID, userID, "maintenance type"); err != nil {
			return nil, err
		}
	}
	if in.BasedOnRecordID != nil {
		if err := s.checkOwned(ctx, s.records, *in.BasedOnRecordID, userID, "maintenance record"); err != nil {
			return nil, err
		}
	}

	due, err := Recurrence{Clock: s.clock}.Next(nil, in.FrequencyType, in.FrequencyValue)
	if err != nil {
		return nil, err
	}
	if in.ScheduledDate != nil {
		due = *in.ScheduledDate
	}

	row := &model.Schedule{
		AssetID:           in.AssetID,
		MaintenanceTypeID: in.MaintenanceTypeID,
		BasedOnRecordID:   in.BasedOnRecordID,
		ScheduledDate:     due,
		Status:            model.StatusPending,
		FrequencyType:     in.FrequencyType,
		FrequencyValue:    in.FrequencyValue,
	}
	if err := s.store.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	metrics.SchedulesCreated.WithLabelValues("manual").Inc()
	return row, nil
}

// Get returns one schedule of the user.
func (s *Service) Get(ctx context.Context, id, userID uint64) (*model.Schedule, error) {
	if _, err := s.Reconcile(ctx, userID); err != nil {
		return nil, err
	}
	return s.load(ctx, id, userID)
}

func (s *Service) load(ctx context.Context, id, userID uint64) (*model.Schedule, error) {
	row, err := s.store.GetForUser(ctx, id, userID)
	if errors.Is(err, repository.ErrScheduleNotFound) {
		return nil, notFound("schedule")
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return row, nil
}

// List returns every schedule of the user.
func (s *Service) List(ctx context.Context, userID uint64) ([]*model.Schedule, error) {
	if _, err := s.Reconcile(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return rows, nil
}

// ListByAsset returns the schedules of one asset.  A missing or foreign
// asset is NotFound.
func (s *Service) ListByAsset(ctx context.Context, assetID, userID uint64) ([]*model.Schedule, error) {
	ok, err := s.assets.ExistsForUser(ctx, assetID, userID)
	if err != nil {
		return nil, fmt.Errorf("check asset: %w", err)
	}
	if !ok {
		return nil, notFound("asset")
	}
	if _, err := s.Reconcile(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListByAsset(ctx, assetID, userID)
	if err != nil {
		return nil, fmt.Errorf("list asset schedules: %w", err)
	}
	return rows, nil
}

// Upcoming returns pending schedules due between today and today+days.
func (s *Service) Upcoming(ctx context.Context, userID uint64, days int) ([]*model.Schedule, error) {
	if days < 1 || days > MaxUpcomingDays {
		return nil, invalid("days must be between 1 and %d", MaxUpcomingDays)
	}
	if _, err := s.Reconcile(ctx, userID); err != nil {
		return nil, err
	}
	today := s.clock.Today()
	rows, err := s.store.ListUpcoming(ctx, userID, today, today.AddDays(days))
	if err != nil {
		return nil, fmt.Errorf("list upcoming schedules: %w", err)
	}
	return rows, nil
}

// Overdue returns the user's overdue schedules.
func (s *Service) Overdue(ctx context.Context, userID uint64) ([]*model.Schedule, error) {
	if _, err := s.Reconcile(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListOverdue(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list overdue schedules: %w", err)
	}
	return rows, nil
}

// Stats summarises the user's schedules.
func (s *Service) Stats(ctx context.Context, userID uint64) (*model.ScheduleStats, error) {
	if _, err := s.Reconcile(ctx, userID); err != nil {
		return nil, err
	}
	st, err := s.store.Stats(ctx, userID, s.clock.Today())
	if err != nil {
		return nil, fmt.Errorf("schedule stats: %w", err)
	}
	return st, nil
}

func validateUpdate(upd model.ScheduleUpdate) error {
	if upd.Status != nil && !upd.Status.Valid() {
		return invalid("unknown status %q", *upd.Status)
	}
	if upd.FrequencyType != nil && !upd.FrequencyType.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownFrequency, *upd.FrequencyType)
	}
	if upd.FrequencyValue != nil && *upd.FrequencyValue <= 0 {
		return invalid("frequency_value must be greater than zero")
	}
	if upd.FrequencyValue != nil && *upd.FrequencyValue > MaxFrequencyValue {
		return invalid("frequency_value must be at most %d", MaxFrequencyValue)
	}
	if upd.ScheduledDate != nil && upd.ScheduledDate.IsZero() {
		return invalid("scheduled_date cannot be empty")
	}
	return nil
}

// Update applies a sparse edit.  An empty edit returns the current row
// without writing.  Completed schedules cannot be edited.
func (s *Service) Update(ctx context.Context, id, userID uint64, upd model.ScheduleUpdate) (*model.Schedule, error) {
	if err := validateUpdate(upd); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return current, nil
	}
	if current.Status == model.StatusCompleted {
		return nil, ErrScheduleCompleted
	}
	if upd.MaintenanceTypeID != nil {
		if err := s.checkOwned(ctx, s.types, *upd.MaintenanceTypeID, userID, "maintenance type"); err != nil {
			return nil, err
		}
	}
	if upd.FrequencyType != nil || upd.FrequencyValue != nil {
		unit, n := current.FrequencyType, current.FrequencyValue
		if upd.FrequencyType != nil {
			unit = *upd.FrequencyType
		}
		if upd.FrequencyValue != nil {
			n = *upd.FrequencyValue
		}
		// the successor of this row must stay computable
		if _, err := NextDate(s.clock.Today(), unit, n); err != nil {
			return nil, err
		}
	}
	if err := s.deriveStatus(current, &upd); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, upd); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	if _, err := s.Reconcile(ctx, userID); err != nil {
		return nil, err
	}
	return s.load(ctx, id, userID)
}

// deriveStatus keeps pending and overdue consistent with the due date when
// an edit moves the date or sets either status.  Overdue can only be set
// on a date before today; an explicit completed is left alone.
func (s *Service) deriveStatus(current *model.Schedule, upd *model.ScheduleUpdate) error {
	if upd.Status != nil && *upd.Status == model.StatusCompleted {
		return nil
	}
	if upd.Status == nil && upd.ScheduledDate == nil {
		return nil
	}
	today := s.clock.Today()
	due := current.ScheduledDate
	if upd.ScheduledDate != nil {
		due = *upd.ScheduledDate
	}
	if upd.Status != nil && *upd.Status == model.StatusOverdue && !due.Before(today) {
		return invalid("status overdue needs a scheduled_date before %s", today)
	}
	st := model.StatusPending
	if due.Before(today) {
		st = model.StatusOverdue
	}
	upd.Status = &st
	return nil
}

// Delete removes a schedule of the user.
func (s *Service) Delete(ctx context.Context, id, userID uint64) error {
	err := s.store.DeleteForUser(ctx, id, userID)
	if errors.Is(err, repository.ErrScheduleNotFound) {
		return notFound("schedule")
	}
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// Complete marks the schedule completed and inserts its successor in one
// transaction.  The successor keeps the asset, type and frequency, points
// at recordID and is due one period after today.
func (s *Service) Complete(ctx context.Context, scheduleID, userID, recordID uint64) (*model.Schedule, error) {
	if recordID == 0 {
		return nil, invalid("record_id is required")
	}
	current, err := s.load(ctx, scheduleID, userID)
	if err != nil {
		return nil, err
	}
	if current.Status == model.StatusCompleted {
		return nil, ErrScheduleCompleted
	}
	if err := s.checkOwned(ctx, s.records, recordID, userID, "maintenance record"); err != nil {
		return nil, err
	}

	today := s.clock.Today()
	next, err := s.transact(ctx, scheduleID, userID, recordID, today)
	if err != nil {
		return nil, err
	}

	current.Status = model.StatusCompleted
	metrics.SchedulesCompleted.WithLabelValues(string(current.FrequencyType)).Inc()
	metrics.SchedulesCreated.WithLabelValues("successor").Inc()
	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"schedule_id": scheduleID,
		"next_id":     next.ID,
		"next_date":   next.ScheduledDate.String(),
	}).Info("schedule completed")

	s.notifier.ScheduleCompleted(ctx, Completion{
		UserID:      userID,
		RecordID:    recordID,
		Completed:   current,
		Next:        next,
		CompletedOn: today,
	})
	return next, nil
}

func (s *Service) transact(ctx context.Context, scheduleID, userID, recordID uint64, today model.Date) (*model.Schedule, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin completion: %w", err)
	}
	defer tx.Rollback()

	row, err := s.store.GetForUserTx(ctx, tx, scheduleID, userID)
	if errors.Is(err, repository.ErrScheduleNotFound) {
		return nil, notFound("schedule")
	}
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	due, err := NextDate(today, row.FrequencyType, row.FrequencyValue)
	if err != nil {
		return nil, err
	}

	err = s.store.MarkCompletedTx(ctx, tx, row.ID)
	if errors.Is(err, repository.ErrScheduleAlreadyCompleted) {
		return nil, ErrScheduleCompleted
	}
	if err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}

	next := &model.Schedule{
		AssetID:           row.AssetID,
		MaintenanceTypeID: row.MaintenanceTypeID,
		BasedOnRecordID:   &recordID,
		ScheduledDate:     due,
		Status:            model.StatusPending,
		FrequencyType:     row.FrequencyType,
		FrequencyValue:    row.FrequencyValue,
	}
	if err := s.store.CreateTx(ctx, tx, next); err != nil {
		return nil, fmt.Errorf("create successor: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit completion: %w", err)
	}
	return next, nil
}
