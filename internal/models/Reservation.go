package models

import "time"

// Reservation binds one seat on one trip to one user.
//
// No gorm.Model here: reservations are deleted for real, not soft-deleted,
// so the two unique indexes keep holding and a freed seat number can be
// taken again. The indexes are the engine's whole concurrency story: two
// transactions racing for the last seat cannot both commit.
type Reservation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TripID     uint `json:"trip_id" gorm:"not null;uniqueIndex:idx_trip_seat;uniqueIndex:idx_trip_user"`
	SeatNumber int  `json:"seat_number" gorm:"not null;uniqueIndex:idx_trip_seat"`
	UserID     uint `json:"user_id" gorm:"not null;uniqueIndex:idx_trip_user"`

	Trip Trip `gorm:"foreignKey:TripID" json:"trip,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
