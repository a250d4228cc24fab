package models

import "gorm.io/gorm"

// BusStop is one end of a route. The deployment runs between two campuses,
// but the schema allows any number of stops.
type BusStop struct {
	gorm.Model
	Name string `json:"name" binding:"required" gorm:"unique;not null"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}
