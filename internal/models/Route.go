package models

import (
	"gorm.io/gorm"
)

// Route is a directed source/destination stop pair. Many trips run per route.
type Route struct {
	gorm.Model

	SourceStopID      uint `json:"source_stop_id"`
	DestinationStopID uint `json:"destination_stop_id"`

	SourceStop      BusStop `gorm:"foreignKey:SourceStopID" json:"source_stop,omitempty"`
	DestinationStop BusStop `gorm:"foreignKey:DestinationStopID" json:"destination_stop,omitempty"`

	// Optional road path stored as WKB (SRID 4326 LINESTRING).
	// The API accepts and serves GeoJSON; conversion lives in the service layer.
	Geometry []byte `gorm:"type:bytea" json:"-"`
}
