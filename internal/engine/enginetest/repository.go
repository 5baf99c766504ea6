// Package enginetest provides an in-memory engine.Repository used by tests.
// It honours the same compare-and-set contract as the gorm repository so
// concurrency behaviour can be exercised without a database.
package enginetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/swiftcab/swiftcab-backend/internal/engine"
	"github.com/swiftcab/swiftcab-backend/internal/models"
)

type InMemoryRepository struct {
	mu       sync.Mutex
	bookings map[uint]*models.Booking
	drivers  map[uint]*models.Driver
	users    map[uint]*models.User
	nextID   uint
}

var _ engine.Repository = (*InMemoryRepository)(nil)

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		bookings: make(map[uint]*models.Booking),
		drivers:  make(map[uint]*models.Driver),
		users:    make(map[uint]*models.User),
		nextID:   1,
	}
}

// AddDriver seeds a driver row and returns it.
func (r *InMemoryRepository) AddDriver(d models.Driver) *models.Driver {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == 0 {
		d.ID = r.nextID
		r.nextID++
	}
	r.drivers[d.ID] = &d
	return &d
}

// AddUser seeds a user row and returns it.
func (r *InMemoryRepository) AddUser(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	r.users[u.ID] = &u
	return &u
}

// RemoveDriver deletes a driver row, simulating a logical delete.
func (r *InMemoryRepository) RemoveDriver(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drivers, id)
}

func (r *InMemoryRepository) CreateBooking(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = time.Now()
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *InMemoryRepository) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, engine.NewNotFoundError("booking", id)
	}
	clone := *b
	return &clone, nil
}

func (r *InMemoryRepository) ListBookings(_ context.Context, f engine.BookingFilter) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.CustomerID != 0 && b.CustomerID != f.CustomerID {
			continue
		}
		if f.DriverID != 0 && (b.DriverID == nil || *b.DriverID != f.DriverID) {
			continue
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			if !strings.Contains(strings.ToLower(b.Pickup), q) &&
				!strings.Contains(strings.ToLower(b.Dropoff), q) {
				continue
			}
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateBookingStatus(_ context.Context, id uint, expected, next models.BookingStatus, finishedAt *time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, engine.NewNotFoundError("booking", id)
	}
	if b.Status != expected {
		return nil, &engine.ConflictError{BookingID: id, Expected: expected}
	}
	b.Status = next
	if finishedAt != nil {
		t := *finishedAt
		b.FinishedAt = &t
	}
	clone := *b
	return &clone, nil
}

func (r *InMemoryRepository) SetBookingDriver(_ context.Context, id uint, expected models.BookingStatus, driverID uint, next models.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, engine.NewNotFoundError("booking", id)
	}
	if b.Status != expected {
		return nil, &engine.ConflictError{BookingID: id, Expected: expected}
	}
	b.Status = next
	d := driverID
	b.DriverID = &d
	clone := *b
	return &clone, nil
}

func (r *InMemoryRepository) GetDriver(_ context.Context, id uint) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return nil, engine.NewNotFoundError("driver", id)
	}
	clone := *d
	return &clone, nil
}

func (r *InMemoryRepository) GetDriverByEmail(_ context.Context, email string) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drivers {
		if d.Email == email {
			clone := *d
			return &clone, nil
		}
	}
	return nil, &engine.NotFoundError{Entity: "driver", Ref: email}
}

func (r *InMemoryRepository) ListDrivers(_ context.Context, status models.DriverStatus) ([]models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Driver
	for _, d := range r.drivers {
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *InMemoryRepository) DriverHasActiveBooking(_ context.Context, driverID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.DriverID != nil && *b.DriverID == driverID && b.Status == models.BookingStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) GetUser(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, engine.NewNotFoundError("user", id)
	}
	clone := *u
	return &clone, nil
}

func (r *InMemoryRepository) ListUsersByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) AdminStats(_ context.Context) (*engine.AdminStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &engine.AdminStats{Bookings: int64(len(r.bookings)), Drivers: int64(len(r.drivers))}
	for _, u := range r.users {
		if u.Role == models.UserRoleCustomer {
			stats.Customers++
		}
	}
	return stats, nil
}

func (r *InMemoryRepository) DriverStatsFor(_ context.Context, driverID uint) (*engine.DriverStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &engine.DriverStats{}
	for _, b := range r.bookings {
		if b.DriverID == nil || *b.DriverID != driverID {
			continue
		}
		stats.Assigned++
		switch b.Status {
		case models.BookingStatusAccepted:
			stats.Active++
		case models.BookingStatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}
