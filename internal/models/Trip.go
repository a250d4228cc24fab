package models

import (
	"time"

	"gorm.io/gorm"
)

// Trip is one scheduled run of a vehicle along a route. Trips are never
// deleted; a cancelled trip stays visible with its status history.
//
// There is no status column: the current operational status is the latest
// TripStatusRecord for the trip, defaulting to "scheduled" when none exists.
type Trip struct {
	gorm.Model
	RouteID   uint `json:"route_id" gorm:"index;not null"`
	VehicleID uint `json:"vehicle_id" gorm:"not null"`
	DriverID  uint `json:"driver_id" gorm:"not null"`

	Route   Route   `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Driver  Driver  `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	DepartureTime time.Time `json:"departure_time" gorm:"index;not null"`
	ArrivalTime   time.Time `json:"arrival_time" gorm:"not null"`

	// Set once the departure reminder for this trip has gone out.
	ReminderSent bool `json:"-" gorm:"default:false"`
}
