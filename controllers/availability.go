// controllers/availability.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/services"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateRuleInput defines the expected JSON structure for an availability rule
type CreateRuleInput struct {
	EmployeeID    uuid.UUID  `json:"employeeId" binding:"required"`
	DayOfWeek     int        `json:"dayOfWeek" binding:"min=0,max=6"`
	StartTime     string     `json:"startTime" binding:"required"`
	EndTime       string     `json:"endTime" binding:"required"`
	IsException   bool       `json:"isException"`
	ExceptionDate *time.Time `json:"exceptionDate"`
}

// UpdateRuleInput defines the expected JSON structure for rule updates
type UpdateRuleInput struct {
	DayOfWeek     *int       `json:"dayOfWeek"`
	StartTime     *string    `json:"startTime"`
	EndTime       *string    `json:"endTime"`
	IsException   *bool      `json:"isException"`
	ExceptionDate *time.Time `json:"exceptionDate"`
}

// GetSlots returns the bookable windows for an employee on a date. The
// timezone query parameter is accepted and echoed back but not used to
// convert times.
func GetSlots(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Query("employeeId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	duration := 0
	if d := c.Query("duration"); d != "" {
		duration, err = strconv.Atoi(d)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid duration")
			return
		}
	}

	var employee models.Employee
	if err := config.DB.First(&employee, "id = ?", employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Inactive employees are not bookable
	slots := []services.Slot{}
	if employee.IsActive {
		slots, err = availabilitySvc.GenerateSlots(employeeID, date, duration)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"employeeId": employeeID,
		"date":       c.Query("date"),
		"timezone":   c.DefaultQuery("timezone", "UTC"),
		"slots":      slots,
	})
}

// CreateRule creates a weekly rule or a date exception for an employee
func CreateRule(c *gin.Context) {
	var input CreateRuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if _, err := utils.ParseClockTime(input.StartTime); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid start time, expected HH:MM")
		return
	}
	if _, err := utils.ParseClockTime(input.EndTime); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid end time, expected HH:MM")
		return
	}
	if input.IsException && input.ExceptionDate == nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Exception rules require an exception date")
		return
	}

	var employee models.Employee
	if err := config.DB.First(&employee, "id = ?", input.EmployeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	rule := models.AvailabilityRule{
		EmployeeID:    input.EmployeeID,
		DayOfWeek:     input.DayOfWeek,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		IsException:   input.IsException,
		ExceptionDate: input.ExceptionDate,
	}
	if rule.IsException && rule.ExceptionDate != nil {
		day := utils.BeginningOfDay(*rule.ExceptionDate)
		rule.ExceptionDate = &day
		rule.DayOfWeek = int(day.Weekday())
	}

	if err := config.DB.Create(&rule).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create availability rule")
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// GetRules lists availability rules, optionally for a single employee
func GetRules(c *gin.Context) {
	query := config.DB.Model(&models.AvailabilityRule{})

	if employeeID := c.Query("employeeId"); employeeID != "" {
		id, err := uuid.Parse(employeeID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
			return
		}
		query = query.Where("employee_id = ?", id)
	}

	var rules []models.AvailabilityRule
	if err := query.Order("day_of_week, created_at").Find(&rules).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve availability rules")
		return
	}

	c.JSON(http.StatusOK, rules)
}

// UpdateRule updates an existing availability rule
func UpdateRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid rule ID format")
		return
	}

	var input UpdateRuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var rule models.AvailabilityRule
	if err := config.DB.First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Availability rule not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.StartTime != nil {
		if _, err := utils.ParseClockTime(*input.StartTime); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid start time, expected HH:MM")
			return
		}
		rule.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		if _, err := utils.ParseClockTime(*input.EndTime); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid end time, expected HH:MM")
			return
		}
		rule.EndTime = *input.EndTime
	}
	if input.DayOfWeek != nil {
		if *input.DayOfWeek < 0 || *input.DayOfWeek > 6 {
			utils.RespondWithError(c, http.StatusBadRequest, "Day of week must be between 0 and 6")
			return
		}
		rule.DayOfWeek = *input.DayOfWeek
	}
	if input.IsException != nil {
		rule.IsException = *input.IsException
	}
	if input.ExceptionDate != nil {
		day := utils.BeginningOfDay(*input.ExceptionDate)
		rule.ExceptionDate = &day
		rule.DayOfWeek = int(day.Weekday())
	}
	if rule.IsException && rule.ExceptionDate == nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Exception rules require an exception date")
		return
	}

	if err := config.DB.Save(&rule).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update availability rule")
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeleteRule removes an availability rule
func DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid rule ID format")
		return
	}

	result := config.DB.Where("id = ?", id).Delete(&models.AvailabilityRule{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete availability rule")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Availability rule not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Availability rule deleted successfully"})
}
