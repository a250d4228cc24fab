package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"campus_shuttle/internal/models"
	"campus_shuttle/internal/notify"
	"campus_shuttle/internal/services"
)

// ReminderSender delivers the departure reminder to the trip's riders.
type ReminderSender interface {
	DepartureReminder(trip notify.TripInfo, to []notify.Recipient)
}

// ReminderWorker sweeps for trips departing within the next two hours and
// sends each one a reminder. A trip is latched with reminder_sent only after
// a reminder actually went out, so trips with no riders yet are retried on
// the next sweep.
type ReminderWorker struct {
	DB       *gorm.DB
	Trips    services.TripService
	Notifier ReminderSender
	Interval time.Duration
}

const departureWindow = 2 * time.Hour

// Run blocks, sweeping every Interval until ctx is cancelled. Meant to be
// launched as a goroutine from main.
func (w *ReminderWorker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReminderWorker) sweep(ctx context.Context) {
	now := time.Now()

	var trips []models.Trip
	err := w.DB.WithContext(ctx).
		Where("departure_time > ? AND departure_time <= ? AND reminder_sent = ?", now, now.Add(departureWindow), false).
		Find(&trips).Error
	if err != nil {
		logrus.WithError(err).Warn("reminder sweep: trip query failed")
		return
	}

	for _, trip := range trips {
		w.remind(ctx, trip)
	}
}

func (w *ReminderWorker) remind(ctx context.Context, trip models.Trip) {
	recipients := []notify.Recipient{}
	err := w.DB.WithContext(ctx).Raw(`
SELECT DISTINCT u.name, u.email
FROM reservations res
JOIN users u ON u.id = res.user_id
WHERE res.trip_id = ?`, trip.ID).
		Scan(&recipients).Error
	if err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Warn("reminder sweep: rider lookup failed")
		return
	}
	if len(recipients) == 0 {
		// Nobody to remind yet; leave the trip unlatched.
		return
	}

	view, err := w.Trips.View(ctx, trip.ID)
	if err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Warn("reminder sweep: trip view failed")
		return
	}

	w.Notifier.DepartureReminder(notify.TripInfo{
		Source:        view.Source,
		Destination:   view.Destination,
		DepartureTime: view.DepartureTime,
		VehicleName:   view.VehicleName,
	}, recipients)

	err = w.DB.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ?", trip.ID).
		Update("reminder_sent", true).Error
	if err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Warn("reminder sweep: latch update failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"trip_id": trip.ID,
		"riders":  len(recipients),
	}).Info("departure reminder sent")
}
