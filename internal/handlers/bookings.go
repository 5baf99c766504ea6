package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/swiftcab/swiftcab-backend/internal/engine"
	"github.com/swiftcab/swiftcab-backend/internal/models"
	"github.com/swiftcab/swiftcab-backend/pkg/metrics"
)

// CreateBooking handles the creation of a new booking on behalf of a customer
func CreateBooking(eng *engine.Engine, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			CustomerID uint   `json:"customerId" binding:"required"`
			Pickup     string `json:"pickup" binding:"required"`
			Dropoff    string `json:"dropoff" binding:"required"`
			Date       string `json:"date" binding:"required"`
			Time       string `json:"time" binding:"required"`
			TaxiType   string `json:"taxiType"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := eng.CreateBooking(c.Request.Context(), engine.CreateBookingInput{
			CustomerID: input.CustomerID,
			Pickup:     input.Pickup,
			Dropoff:    input.Dropoff,
			Date:       input.Date,
			Time:       input.Time,
			TaxiType:   input.TaxiType,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		m.BookingsCreated.Inc()
		c.JSON(201, booking)
	}
}

// ListBookings returns bookings filtered by status, customer, driver or a
// free-text search over pickup and dropoff
func ListBookings(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := engine.BookingFilter{
			Status: models.BookingStatus(c.Query("status")),
			Query:  c.Query("q"),
		}
		if v := c.Query("customerId"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid customer ID"})
				return
			}
			filter.CustomerID = uint(id)
		}
		if v := c.Query("driverId"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid driver ID"})
				return
			}
			filter.DriverID = uint(id)
		}

		bookings, err := eng.ListBookings(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, bookings)
	}
}

// GetBooking returns one booking by id
func GetBooking(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
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

		c.JSON(200, booking)
	}
}

// CancelBooking cancels a pending or accepted booking
func CancelBooking(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		booking, err := eng.CancelBooking(c.Request.Context(), uint(id))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, booking)
	}
}

// AssignDriver dispatches a pending booking to the selected driver
func AssignDriver(eng *engine.Engine, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		var input struct {
			Source   string `json:"source" binding:"required,oneof=driver user"`
			DriverID uint   `json:"driverId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := eng.AssignDriver(c.Request.Context(), uint(id), engine.DriverRef{
			Source: input.Source,
			ID:     input.DriverID,
		})
		if err != nil {
			var conflict *engine.ConflictError
			if errors.As(err, &conflict) {
				m.DispatchConflicts.Inc()
			}
			respondError(c, err)
			return
		}

		m.DispatchSuccess.WithLabelValues("assign").Inc()
		c.JSON(200, booking)
	}
}
