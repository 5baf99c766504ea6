package engine

import (
	"context"
	"time"

	"github.com/swiftcab/swiftcab-backend/internal/models"
)

// BookingFilter narrows ListBookings. Zero values mean "no filter".
// Query matches pickup or dropoff as a substring, mirroring the dashboard
// search box.
type BookingFilter struct {
	Status     models.BookingStatus
	CustomerID uint
	DriverID   uint
	Query      string
}

// AdminStats are the admin dashboard counters.
type AdminStats struct {
	Customers int64 `json:"customers"`
	Drivers   int64 `json:"drivers"`
	Bookings  int64 `json:"bookings"`
}

// DriverStats are the driver dashboard counters, scoped to one driver.
// Assigned counts every booking ever attached to the driver, Active the
// currently accepted ones, Completed the finished ones.
type DriverStats struct {
	Assigned  int64 `json:"assigned"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
}

// Repository is the engine's only gateway to storage. Implementations must
// translate storage failures into *StoreError and missing rows into
// *NotFoundError, and both mutating methods must apply the update only if
// the stored status still equals expected, returning *ConflictError
// otherwise. That compare-and-set is the sole serialization point for
// concurrent dashboard actions.
type Repository interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error)

	// UpdateBookingStatus moves id from expected to next, stamping
	// finishedAt when non-nil. Returns the updated booking.
	UpdateBookingStatus(ctx context.Context, id uint, expected, next models.BookingStatus, finishedAt *time.Time) (*models.Booking, error)

	// SetBookingDriver atomically moves id from expected to next and attaches
	// driverID in the same write.
	SetBookingDriver(ctx context.Context, id uint, expected models.BookingStatus, driverID uint, next models.BookingStatus) (*models.Booking, error)

	GetDriver(ctx context.Context, id uint) (*models.Driver, error)
	GetDriverByEmail(ctx context.Context, email string) (*models.Driver, error)
	ListDrivers(ctx context.Context, status models.DriverStatus) ([]models.Driver, error)
	DriverHasActiveBooking(ctx context.Context, driverID uint) (bool, error)

	GetUser(ctx context.Context, id uint) (*models.User, error)
	ListUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error)

	// AdminStats and DriverStatsFor take their counts from one consistent
	// read, not a sequence of independently timed queries.
	AdminStats(ctx context.Context) (*AdminStats, error)
	DriverStatsFor(ctx context.Context, driverID uint) (*DriverStats, error)
}
