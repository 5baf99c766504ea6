package engine

import (
	"context"
	"strings"
	"time"

	"github.com/swiftcab/swiftcab-backend/internal/models"
)

// Booking event names pushed to the dashboards after successful mutations.
const (
	EventBookingCreated   = "booking_created"
	EventBookingAssigned  = "booking_assigned"
	EventBookingAccepted  = "booking_accepted"
	EventBookingCompleted = "booking_completed"
	EventBookingCancelled = "booking_cancelled"
)

// Notifier receives booking lifecycle events after the store has been
// updated. Implementations must not fail the operation; delivery is
// best-effort and advisory.
type Notifier interface {
	BookingChanged(ctx context.Context, event string, booking *models.Booking)
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) BookingChanged(context.Context, string, *models.Booking) {}

// CreateBookingInput carries the create-booking form fields.
type CreateBookingInput struct {
	CustomerID uint
	Pickup     string
	Dropoff    string
	Date       string // YYYY-MM-DD
	Time       string // HH:MM
	TaxiType   string
}

// Engine is the dispatch facade consumed by the HTTP layer: every booking
// mutation funnels through here so the repository's compare-and-set
// discipline is never bypassed.
type Engine struct {
	repo     Repository
	resolver *Resolver
	notifier Notifier
	now      func() time.Time
}

func New(repo Repository, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{
		repo:     repo,
		resolver: NewResolver(repo),
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateBooking validates the request and persists a new pending booking.
func (e *Engine) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	pickup := strings.TrimSpace(input.Pickup)
	dropoff := strings.TrimSpace(input.Dropoff)
	if pickup == "" {
		return nil, NewValidationError("pickup location is required")
	}
	if dropoff == "" {
		return nil, NewValidationError("dropoff location is required")
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, NewValidationError("invalid date %q, expected YYYY-MM-DD", input.Date)
	}
	if _, err := time.Parse("15:04", input.Time); err != nil {
		return nil, NewValidationError("invalid time %q, expected HH:MM", input.Time)
	}
	today, _ := time.Parse("2006-01-02", e.now().Format("2006-01-02"))
	if date.Before(today) {
		return nil, NewValidationError("booking date %s is in the past", input.Date)
	}

	customer, err := e.repo.GetUser(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.Role != models.UserRoleCustomer {
		return nil, NewValidationError("user %d is not a customer", input.CustomerID)
	}

	booking := &models.Booking{
		CustomerID: customer.ID,
		Pickup:     pickup,
		Dropoff:    dropoff,
		Date:       input.Date,
		Time:       input.Time,
		TaxiType:   strings.TrimSpace(input.TaxiType),
		Status:     models.BookingStatusPending,
	}
	if err := e.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	e.notifier.BookingChanged(ctx, EventBookingCreated, booking)
	return booking, nil
}

// AssignDriver dispatches a pending booking to the selected driver.
func (e *Engine) AssignDriver(ctx context.Context, bookingID uint, ref DriverRef) (*models.Booking, error) {
	booking, err := e.resolver.Assign(ctx, bookingID, ref)
	if err != nil {
		return nil, err
	}
	e.notifier.BookingChanged(ctx, EventBookingAssigned, booking)
	return booking, nil
}

// AcceptRide is a driver self-accepting a pending booking. Identical code
// path to AssignDriver with the selector bound to the caller's identity.
func (e *Engine) AcceptRide(ctx context.Context, bookingID, driverID uint) (*models.Booking, error) {
	booking, err := e.resolver.Assign(ctx, bookingID, DriverRef{Source: DriverSourceDriver, ID: driverID})
	if err != nil {
		return nil, err
	}
	e.notifier.BookingChanged(ctx, EventBookingAccepted, booking)
	return booking, nil
}

// CompleteRide finishes an accepted booking and stamps the finish time.
func (e *Engine) CompleteRide(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := e.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(booking.Status, models.BookingStatusCompleted); err != nil {
		return nil, err
	}

	finishedAt := e.now()
	updated, err := e.repo.UpdateBookingStatus(ctx, bookingID, booking.Status, models.BookingStatusCompleted, &finishedAt)
	if err != nil {
		return nil, err
	}
	e.notifier.BookingChanged(ctx, EventBookingCompleted, updated)
	return updated, nil
}

// CancelBooking cancels a pending or accepted booking. A driver id attached
// before cancellation is kept for audit history.
func (e *Engine) CancelBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := e.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(booking.Status, models.BookingStatusCancelled); err != nil {
		return nil, err
	}

	updated, err := e.repo.UpdateBookingStatus(ctx, bookingID, booking.Status, models.BookingStatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	e.notifier.BookingChanged(ctx, EventBookingCancelled, updated)
	return updated, nil
}

// GetBooking loads one booking.
func (e *Engine) GetBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	return e.repo.GetBooking(ctx, bookingID)
}

// ListBookings is a pure filtered read, re-computed per call.
func (e *Engine) ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, NewValidationError("unknown booking status %q", filter.Status)
	}
	return e.repo.ListBookings(ctx, filter)
}

// DriverOptions lists the assignable drivers for the admin combobox.
func (e *Engine) DriverOptions(ctx context.Context) ([]DriverOption, error) {
	return e.resolver.Options(ctx)
}

// GetStats returns the admin dashboard counters from one snapshot read.
func (e *Engine) GetStats(ctx context.Context) (*AdminStats, error) {
	return e.repo.AdminStats(ctx)
}

// GetDriverStats returns the counters for one driver's dashboard.
func (e *Engine) GetDriverStats(ctx context.Context, driverID uint) (*DriverStats, error) {
	if _, err := e.repo.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return e.repo.DriverStatsFor(ctx, driverID)
}
