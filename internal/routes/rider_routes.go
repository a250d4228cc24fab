package routes

import (
	"campus_shuttle/internal/controllers"
	"campus_shuttle/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RiderRoutes(r *gin.Engine) {
	rider := r.Group("/")
	rider.Use(middleware.RequireAuth())
	{
		rider.POST("/reservations", controllers.BookTrip)
		rider.GET("/my/reservations", controllers.MyReservations)
		rider.DELETE("/reservations/:id", controllers.CancelReservation)
	}
}
