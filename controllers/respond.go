package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"civic-issue-tracker/services"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP responses.
// Internal errors are logged and surfaced as a generic failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationMessage(err)})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You are not authorized to perform this action"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	case errors.Is(err, services.ErrPrecondition):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Operation not allowed in the current state"})
	default:
		log.Println("Server error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}

func validationMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}
