package routes

import (
	"net/http"

	"campus_shuttle/internal/controllers"

	"github.com/gin-gonic/gin"
)

func PublicRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/trips", controllers.ListTrips)
}
