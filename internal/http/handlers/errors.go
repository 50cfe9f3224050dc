package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelorders/internal/domain"
	"travelorders/internal/http/middleware"
)

func respondError(c *gin.Context, status int, message string) {
	payload := gin.H{"message": message}
	if rid := middleware.GetRequestID(c); rid != "" {
		payload["request_id"] = rid
	}
	c.JSON(status, payload)
}

// RespondDomainError maps the service error taxonomy to HTTP statuses.
// AlreadyAssessed is a permission-class failure, not a validation one.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, err.Error())
	case domain.IsPermissionDenied(err):
		respondError(c, http.StatusForbidden, err.Error())
	case domain.IsAlreadyAssessed(err):
		respondError(c, http.StatusForbidden, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "something went wrong")
	}
}
