package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"campus_shuttle/internal/domain"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/notify"
)

// SeatLedger is the capacity authority the service books through.
type SeatLedger interface {
	Reserve(ctx context.Context, tripID, userID uint) (*models.Reservation, error)
	Release(ctx context.Context, tripID uint, seatNumber int) error
}

// MaintenanceGate is consulted before any booking work starts.
type MaintenanceGate interface {
	IsActive(ctx context.Context) (bool, error)
}

// ReminderNotifier delivers the last-minute boarding reminder for bookings
// made inside the reminder window.
type ReminderNotifier interface {
	LastMinuteReminder(trip notify.TripInfo, to notify.Recipient)
}

// ReservationView is a reservation denormalized for the rider's list.
type ReservationView struct {
	ReservationID uint      `json:"reservation_id"`
	TripID        uint      `json:"trip_id"`
	SeatNumber    int       `json:"seat_number"`
	DepartureTime time.Time `json:"departure_time"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	VehicleName   string    `json:"vehicle_name"`
}

// ReservationService is the externally-invoked booking operation. It
// composes the maintenance gate and the seat ledger; the ledger does the
// one genuinely concurrent piece of work.
type ReservationService struct {
	DB       *gorm.DB
	Gate     MaintenanceGate
	Seats    SeatLedger
	Trips    TripService
	Notifier ReminderNotifier
}

// reminderWindow matches the scheduler's sweep horizon: bookings made this
// close to departure get their reminder immediately instead of waiting for
// the next sweep.
const reminderWindow = 2 * time.Hour

// Book reserves a seat on the trip for the user. The maintenance gate is
// checked first and refuses without touching the ledger. Conflict outcomes
// (full, duplicate, cancelled) are definitional and must not be retried.
func (s ReservationService) Book(ctx context.Context, tripID, userID uint) (*models.Reservation, error) {
	active, err := s.Gate.IsActive(ctx)
	if err != nil {
		return nil, domain.UnavailableError{Msg: "maintenance state unknown", Err: err}
	}
	if active {
		return nil, domain.UnavailableError{Msg: "service is down for maintenance"}
	}

	reservation, err := s.Seats.Reserve(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil && s.DB != nil {
		go s.remindIfImminent(tripID, userID)
	}

	return reservation, nil
}

// ListForUser returns the user's reservations, latest departure first.
// No reservations is an empty list, not an error.
func (s ReservationService) ListForUser(ctx context.Context, userID uint) ([]ReservationView, error) {
	views := []ReservationView{}
	err := s.DB.WithContext(ctx).Raw(`
SELECT res.id AS reservation_id,
       res.trip_id,
       res.seat_number,
       t.departure_time,
       src.name AS source,
       dst.name AS destination,
       v.name AS vehicle_name
FROM reservations res
JOIN trips t ON t.id = res.trip_id
JOIN routes r ON r.id = t.route_id
JOIN bus_stops src ON src.id = r.source_stop_id
JOIN bus_stops dst ON dst.id = r.destination_stop_id
JOIN vehicles v ON v.id = t.vehicle_id
WHERE res.user_id = ?
ORDER BY t.departure_time DESC`, userID).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Cancel releases the caller's own reservation, freeing the seat number for
// reuse. Someone else's reservation looks like a missing one.
func (s ReservationService) Cancel(ctx context.Context, reservationID, userID uint) error {
	var reservation models.Reservation
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", reservationID, userID).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "reservation", Err: err}
		}
		return err
	}

	if err := s.Seats.Release(ctx, reservation.TripID, reservation.SeatNumber); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"trip_id":        reservation.TripID,
		"seat":           reservation.SeatNumber,
		"user_id":        userID,
	}).Info("reservation cancelled")
	return nil
}

// AdminDelete removes any reservation regardless of owner.
func (s ReservationService) AdminDelete(ctx context.Context, reservationID uint, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.UnauthorizedError{Msg: "admin capability required"}
	}

	result := s.DB.WithContext(ctx).
		Where("id = ?", reservationID).
		Delete(&models.Reservation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "reservation"}
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"actor":          actor.UserID,
	}).Info("reservation removed by admin")
	return nil
}

// remindIfImminent sends the boarding reminder right away when the booked
// trip departs within the reminder window. Best-effort, off the request path.
func (s ReservationService) remindIfImminent(tripID, userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var trip models.Trip
	if err := s.DB.WithContext(ctx).First(&trip, tripID).Error; err != nil {
		logrus.WithError(err).WithField("trip_id", tripID).Warn("last-minute reminder: trip lookup failed")
		return
	}

	until := time.Until(trip.DepartureTime)
	if until <= 0 || until > reminderWindow {
		return
	}

	view, err := s.Trips.View(ctx, tripID)
	if err != nil {
		logrus.WithError(err).WithField("trip_id", tripID).Warn("last-minute reminder: trip view failed")
		return
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("last-minute reminder: user lookup failed")
		return
	}

	s.Notifier.LastMinuteReminder(tripInfo(view), notify.Recipient{Name: user.Name, Email: user.Email})
}
