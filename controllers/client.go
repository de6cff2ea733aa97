// controllers/client.go
package controllers

import (
	"errors"
	"log"
	"net/http"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateClientInput defines the expected JSON structure for creating a client
type CreateClientInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// CreateClient creates a client with a backing user, reusing an existing
// user when the email is already registered
func CreateClient(c *gin.Context) {
	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	var user models.User
	err := config.DB.Where("email = ?", input.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Email:    input.Email,
			Name:     input.Name,
			Phone:    input.Phone,
			Password: uuid.NewString(),
			Role:     models.RoleClient,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
			return
		}
	} else if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	var existing models.Client
	if err := config.DB.Where("user_id = ?", user.ID).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Client already exists for this email")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	client := models.Client{
		UserID: user.ID,
		Notes:  input.Notes,
	}
	if err := config.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	config.DB.Preload("User").First(&client, "id = ?", client.ID)
	c.JSON(http.StatusCreated, client)
}

// GetClients retrieves all clients
func GetClients(c *gin.Context) {
	var clients []models.Client
	if err := config.DB.Preload("User").Order("created_at").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	c.JSON(http.StatusOK, clients)
}

// GetClient retrieves a specific client by ID
func GetClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var client models.Client
	if err := config.DB.Preload("User").First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient soft deletes a client. The backing user may be shared with
// other roles, so a failed user deletion is logged and swallowed rather
// than surfaced.
func DeleteClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var client models.Client
	if err := config.DB.First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Delete(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	if err := config.DB.Delete(&models.User{}, "id = ?", client.UserID).Error; err != nil {
		log.Printf("Client %s deleted but backing user %s could not be removed: %v", client.ID, client.UserID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
