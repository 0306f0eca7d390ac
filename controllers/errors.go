package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix-be/models"
)

// respondError translates a domain error into the wire shape
// {"error": {"kind", "message"}}. Unknown errors are logged with full
// detail and surfaced as an opaque 500.
func respondError(c *gin.Context, err error) {
	var de *models.Error
	if !errors.As(err, &de) {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"kind": "InternalError", "message": "Something went wrong"},
		})
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case models.KindValidation:
		status = http.StatusBadRequest
	case models.KindUnauthorized:
		status = http.StatusUnauthorized
	case models.KindForbidden:
		status = http.StatusForbidden
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindInvalidTransition, models.KindSelfVote,
		models.KindDuplicateVote, models.KindConflict:
		status = http.StatusConflict
	case models.KindPaymentFailed:
		status = http.StatusPaymentRequired
	case models.KindExternalService:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": de, "retryable": de.Retryable()})
}
