package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/swiftcab/swiftcab-backend/internal/engine"
	"github.com/swiftcab/swiftcab-backend/internal/models"
	"github.com/swiftcab/swiftcab-backend/pkg/metrics"
	"gorm.io/gorm"
)

// AcceptRide allows a driver to self-accept a pending booking
func AcceptRide(eng *engine.Engine, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		booking, err := eng.AcceptRide(c.Request.Context(), uint(id), driverID)
		if err != nil {
			var conflict *engine.ConflictError
			if errors.As(err, &conflict) {
				m.DispatchConflicts.Inc()
			}
			respondError(c, err)
			return
		}

		m.DispatchSuccess.WithLabelValues("accept").Inc()
		c.JSON(200, booking)
	}
}

// CompleteRide finishes an accepted booking; only the assigned driver may
// complete it
func CompleteRide(eng *engine.Engine, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		booking, err := eng.GetBooking(c.Request.Context(), uint(id))
		if err != nil {
			respondError(c, err)
			return
		}
		if booking.DriverID == nil || *booking.DriverID != driverID {
			c.JSON(403, gin.H{"error": "Unauthorized to complete this booking"})
			return
		}

		updated, err := eng.CompleteRide(c.Request.Context(), uint(id))
		if err != nil {
			var conflict *engine.ConflictError
			if errors.As(err, &conflict) {
				m.DispatchConflicts.Inc()
			}
			respondError(c, err)
			return
		}

		m.DispatchSuccess.WithLabelValues("complete").Inc()
		c.JSON(200, updated)
	}
}

// GetDriverBookings returns the calling driver's trips
func GetDriverBookings(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		bookings, err := eng.ListBookings(c.Request.Context(), engine.BookingFilter{DriverID: driverID})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, bookings)
	}
}

// GetDriverProfile returns the calling driver's own record
func GetDriverProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		var driver models.Driver
		if err := db.First(&driver, driverID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Driver not found"})
			return
		}

		c.JSON(200, driver)
	}
}

// UpdateDriverProfile lets a driver edit their own contact details.
// License and registration numbers stay admin-managed.
func UpdateDriverProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		var input struct {
			Name      string `json:"name"`
			Phone     string `json:"phone"`
			PhotoPath string `json:"photoPath"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var driver models.Driver
		if err := db.First(&driver, driverID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Driver not found"})
			return
		}

		if input.Name != "" {
			driver.Name = input.Name
		}
		if input.Phone != "" {
			driver.Phone = input.Phone
		}
		if input.PhotoPath != "" {
			driver.PhotoPath = input.PhotoPath
		}

		if err := db.Save(&driver).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, driver)
	}
}

// GetDriverStats returns the calling driver's dashboard counters
func GetDriverStats(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		stats, err := eng.GetDriverStats(c.Request.Context(), driverID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, stats)
	}
}
