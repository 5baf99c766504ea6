package engine

import (
	"context"
	"fmt"

	"github.com/swiftcab/swiftcab-backend/internal/models"
)

// Driver selector sources. The admin dashboard builds its assignment
// combobox from both the drivers table and driver-role user accounts, so a
// selection carries the table it came from alongside the row id.
const (
	DriverSourceDriver = "driver"
	DriverSourceUser   = "user"
)

// DriverRef identifies a driver either directly or through a driver-role
// user account.
type DriverRef struct {
	Source string `json:"source"`
	ID     uint   `json:"id"`
}

// DriverOption is one entry of the assignment combobox.
type DriverOption struct {
	Source string `json:"source"`
	ID     uint   `json:"id"`
	Label  string `json:"label"`
}

// Resolver matches a booking to a driver and performs the assignment as one
// compound compare-and-set of status and driver id.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve dereferences a DriverRef to a driver row.
func (r *Resolver) Resolve(ctx context.Context, ref DriverRef) (*models.Driver, error) {
	switch ref.Source {
	case DriverSourceDriver:
		return r.repo.GetDriver(ctx, ref.ID)
	case DriverSourceUser:
		user, err := r.repo.GetUser(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if user.Role != models.UserRoleDriver {
			return nil, NewValidationError("user %d is not a driver account", ref.ID)
		}
		return r.repo.GetDriverByEmail(ctx, user.Email)
	default:
		return nil, NewValidationError("unknown driver selector source %q", ref.Source)
	}
}

// Assign attaches the selected driver to a pending booking. The guard
// validates the Pending->Accepted edge against the status that was read; the
// repository's compare-and-set catches any concurrent move in between.
func (r *Resolver) Assign(ctx context.Context, bookingID uint, ref DriverRef) (*models.Booking, error) {
	booking, err := r.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	driver, err := r.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if driver.Status != models.DriverStatusActive {
		return nil, NewValidationError("driver %d is not active", driver.ID)
	}

	// One active booking per driver.
	busy, err := r.repo.DriverHasActiveBooking(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, NewValidationError("driver %d already has an accepted booking", driver.ID)
	}

	if err := CheckTransition(booking.Status, models.BookingStatusAccepted); err != nil {
		return nil, err
	}

	return r.repo.SetBookingDriver(ctx, bookingID, booking.Status, driver.ID, models.BookingStatusAccepted)
}

// Options builds the human-readable driver list the admin dashboard shows,
// drawn from active drivers and driver-role user accounts.
func (r *Resolver) Options(ctx context.Context) ([]DriverOption, error) {
	drivers, err := r.repo.ListDrivers(ctx, models.DriverStatusActive)
	if err != nil {
		return nil, err
	}
	users, err := r.repo.ListUsersByRole(ctx, models.UserRoleDriver)
	if err != nil {
		return nil, err
	}

	options := make([]DriverOption, 0, len(drivers)+len(users))
	seen := make(map[string]bool, len(drivers))
	for _, d := range drivers {
		options = append(options, DriverOption{
			Source: DriverSourceDriver,
			ID:     d.ID,
			Label:  fmt.Sprintf("%s (%s)", d.Name, d.Email),
		})
		seen[d.Email] = true
	}
	for _, u := range users {
		// Skip accounts already represented by a driver row.
		if seen[u.Email] {
			continue
		}
		options = append(options, DriverOption{
			Source: DriverSourceUser,
			ID:     u.ID,
			Label:  fmt.Sprintf("%s (%s)", u.Name, u.Email),
		})
	}
	return options, nil
}
