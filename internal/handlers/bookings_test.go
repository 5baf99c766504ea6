package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcab/swiftcab-backend/internal/engine"
	"github.com/swiftcab/swiftcab-backend/internal/engine/enginetest"
	"github.com/swiftcab/swiftcab-backend/internal/models"
	"github.com/swiftcab/swiftcab-backend/pkg/metrics"
	"gorm.io/gorm"
)

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

// Prometheus collectors register globally, so build them once per binary.
var testMetrics = metrics.NewMetrics("handlers_test")

type testServer struct {
	router *gin.Engine
	repo   *enginetest.InMemoryRepository
	eng    *engine.Engine
}

// actorMiddleware stands in for the JWT middleware in tests.
func actorMiddleware(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("role", role)
		c.Next()
	}
}

func newTestServer(t *testing.T, driverID uint) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := enginetest.NewInMemoryRepository()
	eng := engine.New(repo, nil)

	r := gin.New()
	admin := r.Group("/api", actorMiddleware(1, "admin"))
	{
		admin.POST("/bookings", CreateBooking(eng, testMetrics))
		admin.GET("/bookings", ListBookings(eng))
		admin.GET("/bookings/:id", GetBooking(eng))
		admin.POST("/bookings/:id/cancel", CancelBooking(eng))
		admin.POST("/bookings/:id/assign", AssignDriver(eng, testMetrics))
		admin.GET("/drivers/options", DriverOptions(eng))
	}
	driver := r.Group("/api/driver", actorMiddleware(driverID, "driver"))
	{
		driver.POST("/bookings/:id/accept", AcceptRide(eng, testMetrics))
		driver.POST("/bookings/:id/complete", CompleteRide(eng, testMetrics))
		driver.GET("/bookings", GetDriverBookings(eng))
		driver.GET("/stats", GetDriverStats(eng))
	}

	return &testServer{router: r, repo: repo, eng: eng}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestCreateBookingHandler(t *testing.T) {
	srv := newTestServer(t, 0)
	customer := srv.repo.AddUser(models.User{Name: "Alice", Email: "alice@example.com", Role: models.UserRoleCustomer})

	w := srv.do(t, "POST", "/api/bookings", gin.H{
		"customerId": customer.ID,
		"pickup":     "Airport",
		"dropoff":    "Downtown",
		"date":       time.Now().Format("2006-01-02"),
		"time":       "14:00",
	})
	require.Equal(t, 201, w.Code)

	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Nil(t, booking.DriverID)
}

func TestCreateBookingHandlerErrors(t *testing.T) {
	srv := newTestServer(t, 0)
	customer := srv.repo.AddUser(models.User{Name: "Alice", Email: "alice@example.com", Role: models.UserRoleCustomer})

	// Missing required fields.
	w := srv.do(t, "POST", "/api/bookings", gin.H{"customerId": customer.ID})
	assert.Equal(t, 400, w.Code)

	// Past date -> validation error.
	w = srv.do(t, "POST", "/api/bookings", gin.H{
		"customerId": customer.ID,
		"pickup":     "A",
		"dropoff":    "B",
		"date":       "2020-01-01",
		"time":       "14:00",
	})
	assert.Equal(t, 400, w.Code)

	// Unknown customer -> not found.
	w = srv.do(t, "POST", "/api/bookings", gin.H{
		"customerId": 999,
		"pickup":     "A",
		"dropoff":    "B",
		"date":       time.Now().Format("2006-01-02"),
		"time":       "14:00",
	})
	assert.Equal(t, 404, w.Code)
}

func TestAssignDriverHandler(t *testing.T) {
	srv := newTestServer(t, 0)
	customer := srv.repo.AddUser(models.User{Name: "Alice", Email: "alice@example.com", Role: models.UserRoleCustomer})
	driver := srv.repo.AddDriver(models.Driver{Name: "Bob", Email: "bob@taxi.test", Status: models.DriverStatusActive})

	w := srv.do(t, "POST", "/api/bookings", gin.H{
		"customerId": customer.ID,
		"pickup":     "Airport",
		"dropoff":    "Downtown",
		"date":       time.Now().Format("2006-01-02"),
		"time":       "14:00",
	})
	require.Equal(t, 201, w.Code)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	assignPath := fmt.Sprintf("/api/bookings/%d/assign", booking.ID)
	w = srv.do(t, "POST", assignPath, gin.H{"source": "driver", "driverId": driver.ID})
	require.Equal(t, 200, w.Code)

	// The booking already left pending: invalid transition -> 422.
	w = srv.do(t, "POST", assignPath, gin.H{"source": "driver", "driverId": driver.ID})
	assert.Equal(t, 422, w.Code)

	// Unknown booking -> 404, bad selector source -> 400.
	w = srv.do(t, "POST", "/api/bookings/999/assign", gin.H{"source": "driver", "driverId": driver.ID})
	assert.Equal(t, 404, w.Code)
	w = srv.do(t, "POST", assignPath, gin.H{"source": "fleet", "driverId": driver.ID})
	assert.Equal(t, 400, w.Code)
}

func TestAcceptAndCompleteRideHandlers(t *testing.T) {
	srv := newTestServer(t, 7)
	customer := srv.repo.AddUser(models.User{Name: "Alice", Email: "alice@example.com", Role: models.UserRoleCustomer})
	srv.repo.AddDriver(models.Driver{Model: gormModel(7), Name: "Bob", Email: "bob@taxi.test", Status: models.DriverStatusActive})

	w := srv.do(t, "POST", "/api/bookings", gin.H{
		"customerId": customer.ID,
		"pickup":     "Airport",
		"dropoff":    "Downtown",
		"date":       time.Now().Format("2006-01-02"),
		"time":       "14:00",
	})
	require.Equal(t, 201, w.Code)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = srv.do(t, "POST", fmt.Sprintf("/api/driver/bookings/%d/accept", booking.ID), nil)
	require.Equal(t, 200, w.Code)

	w = srv.do(t, "POST", fmt.Sprintf("/api/driver/bookings/%d/complete", booking.ID), nil)
	require.Equal(t, 200, w.Code)
	var completed models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
	assert.NotNil(t, completed.FinishedAt)

	// Completing again is an invalid transition.
	w = srv.do(t, "POST", fmt.Sprintf("/api/driver/bookings/%d/complete", booking.ID), nil)
	assert.Equal(t, 422, w.Code)
}

func TestCompleteRideRequiresAssignedDriver(t *testing.T) {
	srv := newTestServer(t, 8)
	customer := srv.repo.AddUser(models.User{Name: "Alice", Email: "alice@example.com", Role: models.UserRoleCustomer})
	assigned := srv.repo.AddDriver(models.Driver{Name: "Bob", Email: "bob@taxi.test", Status: models.DriverStatusActive})
	srv.repo.AddDriver(models.Driver{Model: gormModel(8), Name: "Mallory", Email: "mallory@taxi.test", Status: models.DriverStatusActive})

	w := srv.do(t, "POST", "/api/bookings", gin.H{
		"customerId": customer.ID,
		"pickup":     "Airport",
		"dropoff":    "Downtown",
		"date":       time.Now().Format("2006-01-02"),
		"time":       "14:00",
	})
	require.Equal(t, 201, w.Code)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = srv.do(t, "POST", fmt.Sprintf("/api/bookings/%d/assign", booking.ID), gin.H{"source": "driver", "driverId": assigned.ID})
	require.Equal(t, 200, w.Code)

	// Driver 8 is not the assigned driver.
	w = srv.do(t, "POST", fmt.Sprintf("/api/driver/bookings/%d/complete", booking.ID), nil)
	assert.Equal(t, 403, w.Code)
}

func TestListBookingsHandlerFilters(t *testing.T) {
	srv := newTestServer(t, 0)
	customer := srv.repo.AddUser(models.User{Name: "Alice", Email: "alice@example.com", Role: models.UserRoleCustomer})

	for _, route := range []string{"Airport", "Harbor"} {
		w := srv.do(t, "POST", "/api/bookings", gin.H{
			"customerId": customer.ID,
			"pickup":     route,
			"dropoff":    "Downtown",
			"date":       time.Now().Format("2006-01-02"),
			"time":       "09:30",
		})
		require.Equal(t, 201, w.Code)
	}

	w := srv.do(t, "GET", "/api/bookings?q=harbor", nil)
	require.Equal(t, 200, w.Code)
	var bookings []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 1)

	w = srv.do(t, "GET", "/api/bookings?status=pending", nil)
	require.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 2)

	w = srv.do(t, "GET", "/api/bookings?customerId=notanumber", nil)
	assert.Equal(t, 400, w.Code)
}

func TestCancelBookingHandler(t *testing.T) {
	srv := newTestServer(t, 0)
	customer := srv.repo.AddUser(models.User{Name: "Alice", Email: "alice@example.com", Role: models.UserRoleCustomer})

	w := srv.do(t, "POST", "/api/bookings", gin.H{
		"customerId": customer.ID,
		"pickup":     "Airport",
		"dropoff":    "Downtown",
		"date":       time.Now().Format("2006-01-02"),
		"time":       "14:00",
	})
	require.Equal(t, 201, w.Code)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	cancelPath := fmt.Sprintf("/api/bookings/%d/cancel", booking.ID)
	w = srv.do(t, "POST", cancelPath, nil)
	require.Equal(t, 200, w.Code)

	w = srv.do(t, "POST", cancelPath, nil)
	assert.Equal(t, 422, w.Code)
}

func TestDriverOptionsHandler(t *testing.T) {
	srv := newTestServer(t, 0)
	srv.repo.AddDriver(models.Driver{Name: "Bob", Email: "bob@taxi.test", Status: models.DriverStatusActive})
	srv.repo.AddUser(models.User{Name: "Dan", Email: "dan@taxi.test", Role: models.UserRoleDriver})

	w := srv.do(t, "GET", "/api/drivers/options", nil)
	require.Equal(t, 200, w.Code)

	var options []engine.DriverOption
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))
	assert.Len(t, options, 2)
}
