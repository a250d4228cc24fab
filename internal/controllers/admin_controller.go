package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/services"
)

// CreateTrip provisions a new trip from a route/vehicle/driver/time tuple.
// The trip starts scheduled; capacity follows the vehicle.
func CreateTrip(c *gin.Context) {
	var input struct {
		RouteID   uint      `json:"route_id" binding:"required"`
		VehicleID uint      `json:"vehicle_id" binding:"required"`
		DriverID  uint      `json:"driver_id" binding:"required"`
		Departure time.Time `json:"departure_time" binding:"required"`
		Arrival   time.Time `json:"arrival_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip input: " + err.Error()})
		return
	}

	actor := middleware.CurrentActor(c)

	trip, err := tripService().Create(c.Request.Context(), services.CreateTripInput{
		RouteID:   input.RouteID,
		VehicleID: input.VehicleID,
		DriverID:  input.DriverID,
		Departure: input.Departure,
		Arrival:   input.Arrival,
	}, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := tripService().View(c.Request.Context(), trip.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trip": view})
}

// SetTripStatus appends a status record (delayed/cancelled with a reason,
// or back to scheduled) and returns the updated trip view.
func SetTripStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip id"})
		return
	}

	var input struct {
		Status      string `json:"status" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status input: " + err.Error()})
		return
	}

	actor := middleware.CurrentActor(c)

	if _, err := statusService().SetStatus(c.Request.Context(), uint(id), input.Status, input.Description, actor); err != nil {
		respondError(c, err)
		return
	}

	view, err := tripService().View(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": view})
}

// AdminOptions returns the master data the trip creation form needs.
func AdminOptions(c *gin.Context) {
	options, err := fleetService().Options(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

// GetMaintenance reports whether the maintenance gate is up.
func GetMaintenance(c *gin.Context) {
	active, err := maintenanceService().IsActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance": active})
}

// SetMaintenance toggles the maintenance gate.
func SetMaintenance(c *gin.Context) {
	var input struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance input: " + err.Error()})
		return
	}

	actor := middleware.CurrentActor(c)

	if err := maintenanceService().Set(c.Request.Context(), *input.Active, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"maintenance": *input.Active})
}

// AdminDeleteReservation force-removes any rider's reservation.
func AdminDeleteReservation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation id"})
		return
	}

	actor := middleware.CurrentActor(c)

	if err := reservationService().AdminDelete(c.Request.Context(), uint(id), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted"})
}

// TripManifest streams the passenger manifest PDF for a trip.
func TripManifest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip id"})
		return
	}

	actor := middleware.CurrentActor(c)

	pdf, filename, err := manifestService().ManifestPDF(c.Request.Context(), uint(id), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// CreateStop registers a bus stop.
func CreateStop(c *gin.Context) {
	var input models.BusStop
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stop input: " + err.Error()})
		return
	}

	stop, err := fleetService().CreateStop(c.Request.Context(), input, middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stop": stop})
}

// CreateRoute registers a source/destination stop pair, optionally with a
// GeoJSON LineString road path.
func CreateRoute(c *gin.Context) {
	var input struct {
		SourceStopID      uint   `json:"source_stop_id" binding:"required"`
		DestinationStopID uint   `json:"destination_stop_id" binding:"required"`
		Geometry          string `json:"geometry"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route input: " + err.Error()})
		return
	}

	route, err := fleetService().CreateRoute(c.Request.Context(), services.CreateRouteInput{
		SourceStopID:      input.SourceStopID,
		DestinationStopID: input.DestinationStopID,
		Geometry:          input.Geometry,
	}, middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

// CreateVehicle registers a vehicle and its seat capacity.
func CreateVehicle(c *gin.Context) {
	var input models.Vehicle
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	vehicle, err := fleetService().CreateVehicle(c.Request.Context(), input, middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

// CreateDriver registers a driver.
func CreateDriver(c *gin.Context) {
	var input models.Driver
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver input: " + err.Error()})
		return
	}

	driver, err := fleetService().CreateDriver(c.Request.Context(), input, middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"driver": driver})
}
