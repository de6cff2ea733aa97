// controllers/appointment.go
package controllers

import (
	"net/http"
	"time"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/services"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateAppointmentInput defines the expected JSON structure for booking
type CreateAppointmentInput struct {
	UserID     *uuid.UUID  `json:"userId"`
	ClientID   *uuid.UUID  `json:"clientId"`
	GuestName  string      `json:"guestName"`
	GuestEmail string      `json:"guestEmail"`
	GuestPhone string      `json:"guestPhone"`
	EmployeeID *uuid.UUID  `json:"employeeId"` // null means no preference
	StartTime  time.Time   `json:"startTime" binding:"required"`
	EndTime    time.Time   `json:"endTime" binding:"required"`
	ServiceIDs []uuid.UUID `json:"serviceIds" binding:"required"`
	Notes      string      `json:"notes"`
	Timezone   string      `json:"timezone"`
	Source     string      `json:"source"`
}

// UpdateAppointmentInput defines the expected JSON structure for updates
type UpdateAppointmentInput struct {
	StartTime  *time.Time `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	EmployeeID *uuid.UUID `json:"employeeId"`
	Notes      *string    `json:"notes"`
}

// RescheduleInput defines the expected JSON structure for a reschedule
type RescheduleInput struct {
	StartTime  time.Time  `json:"startTime" binding:"required"`
	EndTime    time.Time  `json:"endTime" binding:"required"`
	EmployeeID *uuid.UUID `json:"employeeId"`
}

// CreateAppointment books a new appointment, creating the client lazily
// when needed
func CreateAppointment(c *gin.Context) {
	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	appt, resolution, err := bookingSvc.CreateAppointment(services.BookingInput{
		UserID:     input.UserID,
		ClientID:   input.ClientID,
		GuestName:  input.GuestName,
		GuestEmail: input.GuestEmail,
		GuestPhone: input.GuestPhone,
		EmployeeID: input.EmployeeID,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		ServiceIDs: input.ServiceIDs,
		Notes:      input.Notes,
		Timezone:   input.Timezone,
		Source:     input.Source,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment":      appt,
		"clientResolution": resolution,
	})
}

// GetAppointments lists appointments, optionally filtered by employee,
// client, status and date range
func GetAppointments(c *gin.Context) {
	query := config.DB.Preload("Items").Preload("Client.User").Preload("Employee.User")

	if employeeID := c.Query("employeeId"); employeeID != "" {
		id, err := uuid.Parse(employeeID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
			return
		}
		query = query.Where("employee_id = ?", id)
	}
	if clientID := c.Query("clientId"); clientID != "" {
		id, err := uuid.Parse(clientID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		query = query.Where("client_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid 'from' timestamp")
			return
		}
		query = query.Where("end_time > ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid 'to' timestamp")
			return
		}
		query = query.Where("start_time < ?", t)
	}

	var appointments []models.Appointment
	if err := query.Order("start_time").Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves a specific appointment by ID
func GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	appt, err := bookingSvc.GetAppointment(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// UpdateAppointment applies a partial update, re-validating availability and
// conflicts when the time or employee changes
func UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	appt, err := bookingSvc.UpdateAppointment(id, services.AppointmentUpdateInput{
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		EmployeeID: input.EmployeeID,
		Notes:      input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

// RescheduleAppointment moves an appointment to a new time and resets it to
// pending
func RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input RescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	appt, err := bookingSvc.RescheduleAppointment(id, input.StartTime, input.EndTime, input.EmployeeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

func ConfirmAppointment(c *gin.Context) {
	statusAction(c, bookingSvc.ConfirmAppointment)
}

func CancelAppointment(c *gin.Context) {
	statusAction(c, bookingSvc.CancelAppointment)
}

func CompleteAppointment(c *gin.Context) {
	statusAction(c, bookingSvc.CompleteAppointment)
}

func MarkAppointmentNoShow(c *gin.Context) {
	statusAction(c, bookingSvc.MarkNoShow)
}

func statusAction(c *gin.Context, action func(uuid.UUID) (*models.Appointment, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	appt, err := action(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}
