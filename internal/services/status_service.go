package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"campus_shuttle/internal/domain"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/notify"
)

// StatusNotifier pushes a rider-facing announcement after a status change.
// Implementations must be safe for concurrent use; delivery is best-effort.
type StatusNotifier interface {
	StatusChanged(trip notify.TripInfo, status, description string, to []notify.Recipient)
}

// StatusService is the trip status machine. The lifecycle is
// scheduled -> delayed -> cancelled, with "cancelled" terminal: once a trip
// is cancelled it never reopens. Re-applying the current status is allowed
// and appends a fresh record (an updated rider-facing description).
type StatusService struct {
	DB       *gorm.DB
	Notifier StatusNotifier
	Trips    TripService
}

// SetStatus appends a status record for the trip. description is required
// for delayed and cancelled, ignored for scheduled. Existing reservations
// survive a cancellation; only new bookings are refused.
func (s StatusService) SetStatus(ctx context.Context, tripID uint, status, description string, actor domain.Actor) (*models.TripStatusRecord, error) {
	if !actor.IsAdmin() {
		return nil, domain.UnauthorizedError{Msg: "admin capability required"}
	}
	if !models.ValidStatus(status) {
		return nil, domain.ValidationError{Field: "status", Msg: "must be scheduled, delayed or cancelled"}
	}
	description = strings.TrimSpace(description)
	if description == "" && status != models.StatusScheduled {
		return nil, domain.ValidationError{Field: "description", Msg: "required for delayed and cancelled"}
	}
	if status == models.StatusScheduled {
		description = ""
	}

	db := s.DB.WithContext(ctx)

	var trip models.Trip
	if err := db.First(&trip, tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "trip", Err: err}
		}
		return nil, err
	}

	current, _, err := s.Current(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if current == models.StatusCancelled && status != models.StatusCancelled {
		return nil, domain.ConflictError{Code: domain.CodeInvalidTransition, Msg: "trip is cancelled and cannot reopen"}
	}

	record := models.TripStatusRecord{
		TripID:      tripID,
		Status:      status,
		Description: description,
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"trip_id": tripID,
		"status":  status,
		"actor":   actor.UserID,
	}).Info("trip status changed")

	if s.Notifier != nil && status != models.StatusScheduled {
		go s.announce(tripID, status, description)
	}

	return &record, nil
}

// Current derives the trip's operational status from the newest history
// record. A trip with no records is scheduled.
func (s StatusService) Current(ctx context.Context, tripID uint) (string, string, error) {
	var latest []models.TripStatusRecord
	err := s.DB.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("id DESC").
		Limit(1).
		Find(&latest).Error
	if err != nil {
		return "", "", err
	}
	if len(latest) == 0 {
		return models.StatusScheduled, "", nil
	}
	return latest[0].Status, latest[0].Description, nil
}

// announce runs off the request path. Failures are logged and dropped; the
// status change already committed.
func (s StatusService) announce(tripID uint, status, description string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	view, err := s.Trips.View(ctx, tripID)
	if err != nil {
		logrus.WithError(err).WithField("trip_id", tripID).Warn("status announcement: trip view failed")
		return
	}

	recipients, err := reservedRiders(ctx, s.DB, tripID)
	if err != nil {
		logrus.WithError(err).WithField("trip_id", tripID).Warn("status announcement: rider lookup failed")
		return
	}
	if len(recipients) == 0 {
		return
	}

	s.Notifier.StatusChanged(tripInfo(view), status, description, recipients)
}

// reservedRiders lists the distinct riders holding a seat on the trip.
func reservedRiders(ctx context.Context, db *gorm.DB, tripID uint) ([]notify.Recipient, error) {
	recipients := []notify.Recipient{}
	err := db.WithContext(ctx).Raw(`
SELECT DISTINCT u.name, u.email
FROM reservations res
JOIN users u ON u.id = res.user_id
WHERE res.trip_id = ?`, tripID).
		Scan(&recipients).Error
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

func tripInfo(view TripView) notify.TripInfo {
	return notify.TripInfo{
		Source:        view.Source,
		Destination:   view.Destination,
		DepartureTime: view.DepartureTime,
		VehicleName:   view.VehicleName,
	}
}
