package model

import "time"

// ScheduleStatus is the lifecycle state of a maintenance schedule.
type ScheduleStatus string

const (
	StatusPending   ScheduleStatus = "pending"   // due in the future (or not yet reconciled)
	StatusCompleted ScheduleStatus = "completed" // terminal; a successor row carries the cadence on
	StatusOverdue   ScheduleStatus = "overdue"   // pending whose date passed at last reconciliation
)

// Valid reports whether s is one of the known statuses.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// FrequencyType is the unit of a recurrence.
type FrequencyType string

const (
	FrequencyDays       FrequencyType = "days"
	FrequencyWeeks      FrequencyType = "weeks"
	FrequencyMonths     FrequencyType = "months"
	FrequencyKilometers FrequencyType = "kilometers"
	FrequencyHours      FrequencyType = "hours"
)

// FrequencyTypes lists every accepted unit in display order.
var FrequencyTypes = []FrequencyType{
	FrequencyDays, FrequencyWeeks, FrequencyMonths, FrequencyKilometers, FrequencyHours,
}

// Valid reports whether f is one of the known units.
func (f FrequencyType) Valid() bool {
	for _, known := range FrequencyTypes {
		if f == known {
			return true
		}
	}
	return false
}

// Schedule is a single due date of recurring maintenance on an asset.
// Schedules carry no user column; ownership is the owning asset's user.
//
// Fields:
//  ID                  – primary key identifier.
//  AssetID             – asset the maintenance applies to.
//  MaintenanceTypeID   – optional classification.
//  BasedOnRecordID     – maintenance record that spawned this row, if any.
//  ScheduledDate       – due date.
//  Status              – pending, completed or overdue.
//  FrequencyType       – recurrence unit.
//  FrequencyValue      – recurrence magnitude, always > 0.
//  CreatedAt/UpdatedAt – audit timestamps.
//
// AssetName, MaintenanceTypeName and LastMaintenanceDate are read-only
// join columns filled by list and get queries.
type Schedule struct {
	ID                uint64         `json:"id"`                  // maintenance_schedules.id
	AssetID           uint64         `json:"asset_id"`            // maintenance_schedules.asset_id
	MaintenanceTypeID *uint64        `json:"maintenance_type_id"` // maintenance_schedules.maintenance_type_id (nullable)
	BasedOnRecordID   *uint64        `json:"based_on_record_id"`  // maintenance_schedules.based_on_record_id (nullable)
	ScheduledDate     Date           `json:"scheduled_date"`      // maintenance_schedules.scheduled_date
	Status            ScheduleStatus `json:"status"`              // maintenance_schedules.status
	FrequencyType     FrequencyType  `json:"frequency_type"`      // maintenance_schedules.frequency_type
	FrequencyValue    int            `json:"frequency_value"`     // maintenance_schedules.frequency_value
	CreatedAt         time.Time      `json:"created_at"`          // maintenance_schedules.created_at
	UpdatedAt         time.Time      `json:"updated_at"`          // maintenance_schedules.updated_at

	AssetName           string  `json:"asset_name,omitempty"`
	MaintenanceTypeName *string `json:"maintenance_type_name,omitempty"`
	LastMaintenanceDate *Date   `json:"last_maintenance_date,omitempty"`
}

// ScheduleStats summarises a user's schedules.  Upcoming counters only
// include pending rows.
type ScheduleStats struct {
	TotalSchedules int64 `json:"total_schedules"`
	Pending        int64 `json:"pending"`
	Completed      int64 `json:"completed"`
	Overdue        int64 `json:"overdue"`
	UpcomingWeek   int64 `json:"upcoming_week"`
	UpcomingMonth  int64 `json:"upcoming_month"`
}

// ScheduleUpdate is a sparse edit of a schedule; nil fields are left as
// they are.
type ScheduleUpdate struct {
	MaintenanceTypeID *uint64
	ScheduledDate     *Date
	Status            *ScheduleStatus
	FrequencyType     *FrequencyType
	FrequencyValue    *int
}

// Empty reports whether the update carries no fields at all.
func (u ScheduleUpdate) Empty() bool {
	return u.MaintenanceTypeID == nil && u.ScheduledDate == nil && u.Status == nil && u.FrequencyType == nil && u.FrequencyValue == nil
}
