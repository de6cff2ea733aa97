// controllers/employee.go
package controllers

import (
	"errors"
	"net/http"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateEmployeeInput defines the expected JSON structure for adding an employee
type CreateEmployeeInput struct {
	Email      string      `json:"email" binding:"required,email"`
	Name       string      `json:"name" binding:"required"`
	Phone      string      `json:"phone"`
	Password   string      `json:"password" binding:"required,min=8"`
	Title      string      `json:"title"`
	ServiceIDs []uuid.UUID `json:"serviceIds"`
}

// UpdateEmployeeInput defines the expected JSON structure for employee updates
type UpdateEmployeeInput struct {
	Title      *string      `json:"title"`
	IsActive   *bool        `json:"isActive"`
	ServiceIDs *[]uuid.UUID `json:"serviceIds"`
}

// CreateEmployee creates the backing user and the employee record
func CreateEmployee(c *gin.Context) {
	var input CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existingUser models.User
	if err := config.DB.Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	user := models.User{
		Email:    input.Email,
		Name:     input.Name,
		Phone:    input.Phone,
		Password: input.Password,
		Role:     models.RoleEmployee,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	employee := models.Employee{
		UserID:   user.ID,
		IsActive: true,
	}
	if input.Title != "" {
		employee.Title = input.Title
	}
	if err := config.DB.Create(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	if len(input.ServiceIDs) > 0 {
		var services []models.Service
		if err := config.DB.Find(&services, "id IN ?", input.ServiceIDs).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		if err := config.DB.Model(&employee).Association("Services").Replace(&services); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to assign services")
			return
		}
	}

	config.DB.Preload("User").Preload("Services").First(&employee, "id = ?", employee.ID)
	c.JSON(http.StatusCreated, employee)
}

// GetEmployees lists employees; pass active=true to only get bookable ones
func GetEmployees(c *gin.Context) {
	query := config.DB.Preload("User").Preload("Services")

	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var employees []models.Employee
	if err := query.Order("id").Find(&employees).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve employees")
		return
	}

	c.JSON(http.StatusOK, employees)
}

// GetEmployee retrieves a specific employee by ID
func GetEmployee(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	var employee models.Employee
	if err := config.DB.Preload("User").Preload("Services").Preload("AvailabilityRules").
		First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, employee)
}

// UpdateEmployee updates an existing employee
func UpdateEmployee(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	var input UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var employee models.Employee
	if err := config.DB.First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Title != nil {
		employee.Title = *input.Title
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update employee")
		return
	}

	if input.ServiceIDs != nil {
		var services []models.Service
		if err := config.DB.Find(&services, "id IN ?", *input.ServiceIDs).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		if err := config.DB.Model(&employee).Association("Services").Replace(&services); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to assign services")
			return
		}
	}

	config.DB.Preload("User").Preload("Services").First(&employee, "id = ?", employee.ID)
	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee soft deletes an employee
func DeleteEmployee(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	result := config.DB.Where("id = ?", id).Delete(&models.Employee{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete employee")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
