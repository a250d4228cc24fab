package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"campus_shuttle/internal/domain"
	"campus_shuttle/internal/models"
)

// Ledger owns seat assignment for trips. Every Reserve call is one
// serializable transaction against the store; there are no in-process locks,
// so correctness holds across multiple server replicas. The reservation
// insert itself is the commit point; the (trip_id, seat_number) and
// (trip_id, user_id) unique indexes make two racing bookings impossible
// to both land.
type Ledger struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{DB: db}
}

// Reserve assigns the lowest-numbered free seat on the trip to the user.
// The trip must exist and not be cancelled; the user must not already hold
// a seat on it. Failed attempts never consume a seat.
func (l *Ledger) Reserve(ctx context.Context, tripID, userID uint) (*models.Reservation, error) {
	var reservation *models.Reservation

	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip models.Trip
		if err := tx.First(&trip, tripID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "trip", Err: err}
			}
			return err
		}

		var latest []models.TripStatusRecord
		if err := tx.Where("trip_id = ?", tripID).Order("id DESC").Limit(1).Find(&latest).Error; err != nil {
			return err
		}
		if len(latest) > 0 && latest[0].Status == models.StatusCancelled {
			return domain.ConflictError{Code: domain.CodeTripCancelled, Msg: "trip is cancelled"}
		}

		var vehicle models.Vehicle
		if err := tx.First(&vehicle, trip.VehicleID).Error; err != nil {
			return err
		}

		var held int64
		if err := tx.Model(&models.Reservation{}).
			Where("trip_id = ? AND user_id = ?", tripID, userID).
			Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			return domain.ConflictError{Code: domain.CodeDuplicateReservation, Msg: "user already holds a seat on this trip"}
		}

		var occupied []int
		if err := tx.Model(&models.Reservation{}).
			Where("trip_id = ?", tripID).
			Order("seat_number ASC").
			Pluck("seat_number", &occupied).Error; err != nil {
			return err
		}

		seat := lowestFreeSeat(occupied, vehicle.TotalSeats)
		if seat == 0 {
			return domain.ConflictError{Code: domain.CodeTripFull, Msg: "no seats left on this trip"}
		}

		reservation = &models.Reservation{
			TripID:     tripID,
			UserID:     userID,
			SeatNumber: seat,
		}
		return tx.Create(reservation).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil {
		return nil, translateStoreError(err)
	}

	logrus.WithFields(logrus.Fields{
		"trip_id": tripID,
		"user_id": userID,
		"seat":    reservation.SeatNumber,
	}).Info("seat reserved")

	return reservation, nil
}

// Release frees a seat. Freeing a seat nobody holds is a no-op, not an
// error, so callers can retry deletes safely.
func (l *Ledger) Release(ctx context.Context, tripID uint, seatNumber int) error {
	return l.DB.WithContext(ctx).
		Where("trip_id = ? AND seat_number = ?", tripID, seatNumber).
		Delete(&models.Reservation{}).Error
}

// Remaining reports how many seats are still open on the trip.
func (l *Ledger) Remaining(ctx context.Context, tripID uint) (int, error) {
	db := l.DB.WithContext(ctx)

	var trip models.Trip
	if err := db.First(&trip, tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.NotFoundError{Resource: "trip", Err: err}
		}
		return 0, err
	}

	var vehicle models.Vehicle
	if err := db.First(&vehicle, trip.VehicleID).Error; err != nil {
		return 0, err
	}

	var taken int64
	if err := db.Model(&models.Reservation{}).Where("trip_id = ?", tripID).Count(&taken).Error; err != nil {
		return 0, err
	}

	remaining := vehicle.TotalSeats - int(taken)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// lowestFreeSeat picks the smallest seat number in [1, capacity] not in
// occupied. occupied must be sorted ascending. Returns 0 when full.
func lowestFreeSeat(occupied []int, capacity int) int {
	next := 1
	for _, s := range occupied {
		if s > next {
			break
		}
		if s == next {
			next++
		}
	}
	if next > capacity {
		return 0
	}
	return next
}

// translateStoreError maps driver-level failures onto domain kinds.
// Under serializable isolation two transactions racing for the same seat
// resolve at commit: the loser sees a unique violation or a serialization
// failure, which is a booking conflict, not an infrastructure fault.
func translateStoreError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "idx_trip_user" {
				return domain.ConflictError{Code: domain.CodeDuplicateReservation, Msg: "user already holds a seat on this trip", Err: err}
			}
			return domain.ConflictError{Code: domain.CodeTripFull, Msg: "seat taken by a concurrent booking", Err: err}
		case "40001": // serialization_failure
			return domain.ConflictError{Code: domain.CodeTripFull, Msg: "lost a concurrent booking race", Err: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.UnavailableError{Msg: "store did not answer in time", Err: err}
	}
	return err
}
