package controllers

import (
	"campus_shuttle/internal/config"
	"campus_shuttle/internal/ledger"
	"campus_shuttle/internal/notify"
	"campus_shuttle/internal/services"
)

// Notifier is shared by the handlers that announce things to riders. Set
// from main after the environment is loaded; nil disables notifications.
var Notifier *notify.Notifier

func tripService() services.TripService {
	return services.TripService{DB: config.DB}
}

func fleetService() services.FleetService {
	return services.FleetService{DB: config.DB}
}

func maintenanceService() services.MaintenanceService {
	return services.MaintenanceService{DB: config.DB}
}

func statusService() services.StatusService {
	svc := services.StatusService{DB: config.DB, Trips: tripService()}
	if Notifier != nil {
		svc.Notifier = Notifier
	}
	return svc
}

func reservationService() services.ReservationService {
	svc := services.ReservationService{
		DB:    config.DB,
		Gate:  maintenanceService(),
		Seats: ledger.New(config.DB),
		Trips: tripService(),
	}
	if Notifier != nil {
		svc.Notifier = Notifier
	}
	return svc
}

func manifestService() services.ManifestService {
	return services.ManifestService{DB: config.DB, Trips: tripService()}
}
