package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"campus_shuttle/internal/domain"
	"campus_shuttle/internal/models"
)

// TripView is a trip denormalized for display: stop names, vehicle, and the
// current operational status derived from the newest history record.
type TripView struct {
	TripID            uint      `json:"trip_id"`
	Source            string    `json:"source"`
	Destination       string    `json:"destination"`
	DepartureTime     time.Time `json:"departure_time"`
	ArrivalTime       time.Time `json:"arrival_time"`
	VehicleName       string    `json:"vehicle_name"`
	TotalSeats        int       `json:"total_seats"`
	Status            string    `json:"status"`
	StatusDescription string    `json:"status_description"`
}

type CreateTripInput struct {
	RouteID   uint
	VehicleID uint
	DriverID  uint
	Departure time.Time
	Arrival   time.Time
}

// TripService provisions trips and serves the rider-facing trip list.
type TripService struct {
	DB *gorm.DB
}

// Create validates and inserts a new trip. The trip starts in the implicit
// "scheduled" state (no status record). Capacity is whatever the assigned
// vehicle seats; it is derived on every booking, never copied.
//
// Driver/vehicle double-booking across overlapping trips is not checked.
func (s TripService) Create(ctx context.Context, in CreateTripInput, actor domain.Actor) (*models.Trip, error) {
	if !actor.IsAdmin() {
		return nil, domain.UnauthorizedError{Msg: "admin capability required"}
	}
	if !in.Arrival.After(in.Departure) {
		return nil, domain.ValidationError{Field: "time_range", Msg: "arrival must be after departure"}
	}

	db := s.DB.WithContext(ctx)

	var route models.Route
	if err := db.First(&route, in.RouteID).Error; err != nil {
		return nil, asLookupError(err, "route")
	}
	var vehicle models.Vehicle
	if err := db.First(&vehicle, in.VehicleID).Error; err != nil {
		return nil, asLookupError(err, "vehicle")
	}
	var driver models.Driver
	if err := db.First(&driver, in.DriverID).Error; err != nil {
		return nil, asLookupError(err, "driver")
	}

	trip := models.Trip{
		RouteID:       in.RouteID,
		VehicleID:     in.VehicleID,
		DriverID:      in.DriverID,
		DepartureTime: in.Departure,
		ArrivalTime:   in.Arrival,
	}
	if err := db.Create(&trip).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"trip_id":   trip.ID,
		"route_id":  in.RouteID,
		"departure": in.Departure,
		"actor":     actor.UserID,
	}).Info("trip created")

	return &trip, nil
}

const tripViewSelect = `
SELECT t.id AS trip_id,
       src.name AS source,
       dst.name AS destination,
       t.departure_time,
       t.arrival_time,
       v.name AS vehicle_name,
       v.total_seats,
       COALESCE(ls.status, 'scheduled') AS status,
       COALESCE(ls.description, '') AS status_description
FROM trips t
JOIN routes r ON r.id = t.route_id
JOIN bus_stops src ON src.id = r.source_stop_id
JOIN bus_stops dst ON dst.id = r.destination_stop_id
JOIN vehicles v ON v.id = t.vehicle_id
LEFT JOIN LATERAL (
    SELECT status, description
    FROM trip_status_records
    WHERE trip_id = t.id AND deleted_at IS NULL
    ORDER BY id DESC
    LIMIT 1
) ls ON true
WHERE t.deleted_at IS NULL`

// List returns every trip, soonest departure first. Cancelled trips stay in
// the list so riders see them with their status and reason.
func (s TripService) List(ctx context.Context) ([]TripView, error) {
	views := []TripView{}
	err := s.DB.WithContext(ctx).
		Raw(tripViewSelect + ` ORDER BY t.departure_time ASC`).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// View returns the denormalized view of one trip.
func (s TripService) View(ctx context.Context, tripID uint) (TripView, error) {
	var views []TripView
	err := s.DB.WithContext(ctx).
		Raw(tripViewSelect+` AND t.id = ?`, tripID).
		Scan(&views).Error
	if err != nil {
		return TripView{}, err
	}
	if len(views) == 0 {
		return TripView{}, domain.NotFoundError{Resource: "trip"}
	}
	return views[0], nil
}

func asLookupError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return err
}
