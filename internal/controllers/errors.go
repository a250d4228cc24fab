package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/domain"
)

// respondError maps a domain error onto an HTTP response. Anything outside
// the taxonomy is a 500 and gets logged.
func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsConflict(err):
		var conflict domain.ConflictError
		errors.As(err, &conflict)
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error(), "code": conflict.Code})
	case domain.IsUnauthorized(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case domain.IsUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
