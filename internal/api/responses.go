package api

import (
	"errors"
	"net/http"

	"alcyxob/workout-telemetry/internal/repository"
	"alcyxob/workout-telemetry/internal/service"
	"alcyxob/workout-telemetry/internal/video"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// abortWithError writes the error envelope and stops the handler chain.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": message})
}

func respondOK(c *gin.Context, code int, body gin.H) {
	body["success"] = true
	c.JSON(code, body)
}

// respondError maps a service error onto its HTTP status. Unknown errors are
// storage failures and are not shown to the caller verbatim.
func respondError(c *gin.Context, err error) {
	var subErr *video.SubprocessError
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, video.ErrUnsupportedActivity):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuthentication):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, video.ErrOutputNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.As(err, &subErr):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "video processing failed",
			"details": subErr.Stderr,
		})
	default:
		log.Errorf("%s %s: %s", c.Request.Method, c.FullPath(), err)
		abortWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

func bindError(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
}
