package routes

import (
	"campus_shuttle/internal/controllers"
	"campus_shuttle/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.GET("/options", controllers.AdminOptions)

		admin.POST("/stops", controllers.CreateStop)
		admin.POST("/routes", controllers.CreateRoute)
		admin.POST("/vehicles", controllers.CreateVehicle)
		admin.POST("/drivers", controllers.CreateDriver)

		admin.POST("/trips", controllers.CreateTrip)
		admin.POST("/trips/:id/status", controllers.SetTripStatus)
		admin.GET("/trips/:id/manifest", controllers.TripManifest)

		admin.GET("/maintenance", controllers.GetMaintenance)
		admin.PUT("/maintenance", controllers.SetMaintenance)

		admin.DELETE("/reservations/:id", controllers.AdminDeleteReservation)
	}
}
