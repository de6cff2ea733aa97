package controllers

import (
	"errors"
	"net/http"

	"salonbook-backend/services"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
)

var (
	availabilitySvc *services.AvailabilityService
	bookingSvc      *services.BookingService
)

// InitServices wires the controllers to the shared service instances. Must
// be called before the router starts handling requests.
func InitServices(availability *services.AvailabilityService, booking *services.BookingService) {
	availabilitySvc = availability
	bookingSvc = booking
}

// respondServiceError maps service errors onto HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.RespondWithError(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrAppointmentNotFound),
		errors.Is(err, services.ErrEmployeeNotFound),
		errors.Is(err, services.ErrRuleNotFound),
		errors.Is(err, services.ErrClientNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}
