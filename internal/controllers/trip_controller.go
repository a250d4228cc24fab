package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListTrips is the public timetable: every trip with its route, vehicle and
// current operational status, soonest departure first.
func ListTrips(c *gin.Context) {
	trips, err := tripService().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trips})
}
