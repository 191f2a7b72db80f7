package model

import "time"

// AssetStatus is the operational state of an asset.
type AssetStatus string

const (
	AssetActive      AssetStatus = "active"
	AssetInactive    AssetStatus = "inactive"
	AssetMaintenance AssetStatus = "maintenance"
)

// Valid reports whether s is one of the known asset statuses.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetActive, AssetInactive, AssetMaintenance:
		return true
	}
	return false
}

// Asset is a physical item owned by a user on which maintenance is
// performed.  This struct corresponds to a row in the `assets` table.
type Asset struct {
	ID          uint64      `json:"id"`          // assets.id
	UserID      uint64      `json:"user_id"`     // assets.user_id
	Name        string      `json:"name"`        // assets.name
	Description *string     `json:"description"` // assets.description (nullable)
	Location    *string     `json:"location"`    // assets.location (nullable)
	Status      AssetStatus `json:"status"`      // assets.status
	CreatedAt   time.Time   `json:"created_at"`  // assets.created_at
	UpdatedAt   time.Time   `json:"updated_at"`  // assets.updated_at
}
