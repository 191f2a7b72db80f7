package model

import "time"

// MaintenanceType classifies maintenance work (oil change, inspection...).
// Types are per user.
type MaintenanceType struct {
	ID          uint64    `json:"id"`          // maintenance_types.id
	UserID      uint64    `json:"user_id"`     // maintenance_types.user_id
	Name        string    `json:"name"`        // maintenance_types.name
	Description *string   `json:"description"` // maintenance_types.description (nullable)
	IsDefault   bool      `json:"is_default"`  // maintenance_types.is_default
	CreatedAt   time.Time `json:"created_at"`  // maintenance_types.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // maintenance_types.updated_at
}

// MaintenanceRecord logs maintenance that was actually performed on an
// asset.  Its id is what the completion of a schedule refers back to.
//
// Fields:
//  ID                – primary key identifier.
//  AssetID           – asset that was serviced.
//  MaintenanceTypeID – optional classification.
//  DatePerformed     – calendar date the work was done.
//  Notes             – free text (nullable).
//  CostCents         – cost in cents (nullable).
type MaintenanceRecord struct {
	ID                uint64    `json:"id"`                  // maintenance_records.id
	AssetID           uint64    `json:"asset_id"`            // maintenance_records.asset_id
	MaintenanceTypeID *uint64   `json:"maintenance_type_id"` // maintenance_records.maintenance_type_id (nullable)
	DatePerformed     Date      `json:"date_performed"`      // maintenance_records.date_performed
	Notes             *string   `json:"notes"`               // maintenance_records.notes (nullable)
	CostCents         *int64    `json:"cost_cents"`          // maintenance_records.cost_cents (nullable)
	CreatedAt         time.Time `json:"created_at"`          // maintenance_records.created_at
	UpdatedAt         time.Time `json:"updated_at"`          // maintenance_records.updated_at

	AssetName string `json:"asset_name,omitempty"`
}
