// Package queue defines the broker payloads of the maintenance service and
// the consumer that writes them to the audit log.
package queue

// ScheduleCompletedQueue is the durable queue completion events go to.
const ScheduleCompletedQueue = "maintenance.schedule.completed"

// ScheduleCompletedEvent is published after a completion transaction
// commits.  It carries enough for consumers to log or notify without
// reading the primary database.  Dates are YYYY-MM-DD.
type ScheduleCompletedEvent struct {
	EventID           string  `json:"event_id"`
	UserID            uint64  `json:"user_id"`
	AssetID           uint64  `json:"asset_id"`
	AssetName         string  `json:"asset_name"`
	MaintenanceTypeID *uint64 `json:"maintenance_type_id,omitempty"`
	RecordID          uint64  `json:"record_id"`
	ScheduleID        uint64  `json:"schedule_id"`
	ScheduledDate     string  `json:"scheduled_date"`
	NextScheduleID    uint64  `json:"next_schedule_id"`
	NextDate          string  `json:"next_date"`
	FrequencyType     string  `json:"frequency_type"`
	FrequencyValue    int     `json:"frequency_value"`
	CompletedOn       string  `json:"completed_on"`
}
