package models

import "gorm.io/gorm"

// Vehicle carries the seat capacity that bounds reservations on its trips.
// Capacity is read through the trip's vehicle, never copied onto the trip.
type Vehicle struct {
	gorm.Model
	Name         string `json:"name" binding:"required"`
	Registration string `json:"registration"`
	TotalSeats   int    `json:"total_seats" binding:"required" gorm:"not null"`
}
