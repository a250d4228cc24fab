package routes

import (
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	r.Use(ginlogger.SetLogger())
	r.Use(gin.Recovery())

	AuthRoutes(r)
	PublicRoutes(r)
	RiderRoutes(r)
	AdminRoutes(r)

	return r
}
