package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/swiftcab/swiftcab-backend/internal/engine"
	"github.com/swiftcab/swiftcab-backend/internal/models"
	"gorm.io/gorm"
)

type DriverInput struct {
	Name               string `json:"name" binding:"required"`
	Email              string `json:"email" binding:"required,email"`
	Phone              string `json:"phone"`
	LicenseNumber      string `json:"licenseNumber"`
	RegistrationNumber string `json:"registrationNumber"`
	Password           string `json:"password"`
}

// CreateOrUpdateDriver upserts a driver keyed by email, mirroring the admin
// dashboard's create-driver form
func CreateOrUpdateDriver(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input DriverInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var driver models.Driver
		err := db.Where("email = ?", input.Email).First(&driver).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(500, gin.H{"error": "Failed to look up driver"})
			return
		}
		creating := errors.Is(err, gorm.ErrRecordNotFound)

		if creating && input.Password == "" {
			c.JSON(400, gin.H{"error": "Password is required for a new driver"})
			return
		}

		driver.Name = input.Name
		driver.Email = input.Email
		driver.Phone = input.Phone
		driver.LicenseNumber = input.LicenseNumber
		driver.RegistrationNumber = input.RegistrationNumber
		if creating {
			driver.Status = models.DriverStatusActive
		}
		if input.Password != "" {
			driver.Password = input.Password
			if err := driver.HashPassword(); err != nil {
				c.JSON(500, gin.H{"error": "Failed to hash password"})
				return
			}
		}

		if err := db.Save(&driver).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save driver"})
			return
		}

		status := 200
		if creating {
			status = 201
		}
		c.JSON(status, driver)
	}
}

// ListDrivers returns all drivers for the admin dashboard
func ListDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var drivers []models.Driver
		if err := db.Order("name").Find(&drivers).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch drivers"})
			return
		}

		c.JSON(200, drivers)
	}
}

// UpdateDriverStatus flips a driver between active and inactive
func UpdateDriverStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid driver ID"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,oneof=active inactive"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var driver models.Driver
		if err := db.First(&driver, uint(id)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Driver not found"})
			return
		}

		driver.Status = models.DriverStatus(input.Status)
		if err := db.Save(&driver).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update driver"})
			return
		}

		c.JSON(200, driver)
	}
}

// DriverOptions returns the assignment combobox entries
func DriverOptions(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		options, err := eng.DriverOptions(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, options)
	}
}
