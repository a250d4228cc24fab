package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/middleware"
)

// BookTrip assigns the caller the lowest free seat on the requested trip.
// Seats are never chosen by the rider.
func BookTrip(c *gin.Context) {
	var input struct {
		TripID uint `json:"trip_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking input: " + err.Error()})
		return
	}

	actor := middleware.CurrentActor(c)

	reservation, err := reservationService().Book(c.Request.Context(), input.TripID, actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reservation_id": reservation.ID,
		"trip_id":        reservation.TripID,
		"seat_number":    reservation.SeatNumber,
	})
}

// MyReservations lists the caller's reservations, latest departure first.
func MyReservations(c *gin.Context) {
	actor := middleware.CurrentActor(c)

	views, err := reservationService().ListForUser(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// CancelReservation deletes the caller's own reservation and frees the seat.
func CancelReservation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation id"})
		return
	}

	actor := middleware.CurrentActor(c)

	if err := reservationService().Cancel(c.Request.Context(), uint(id), actor.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled"})
}
