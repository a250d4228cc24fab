package models

import "gorm.io/gorm"

// Operational statuses a trip can be in.
const (
	StatusScheduled = "scheduled"
	StatusDelayed   = "delayed"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is one of the known trip statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusDelayed, StatusCancelled:
		return true
	}
	return false
}

// TripStatusRecord is one entry in a trip's append-only status history.
// Records are only ever inserted; the newest one wins. Deriving the current
// status from history instead of mutating a column on the trip avoids a
// lost-update race between concurrent admin writes.
type TripStatusRecord struct {
	gorm.Model
	TripID      uint   `json:"trip_id" gorm:"index;not null"`
	Status      string `json:"status" gorm:"not null"` // scheduled, delayed, cancelled
	Description string `json:"description"`
}
