package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/swiftcab/swiftcab-backend/internal/engine"
	"github.com/swiftcab/swiftcab-backend/internal/models"
	"gorm.io/gorm"
)

// BookingRepository is the gorm-backed implementation of engine.Repository.
// Every status mutation is a single UPDATE guarded by the expected status in
// the WHERE clause; a zero row count is disambiguated into not-found versus
// conflict by a follow-up read.
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

var _ engine.Repository = (*BookingRepository)(nil)

func (r *BookingRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return &engine.StoreError{Op: "create booking", Err: err}
	}
	return nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Driver").
		First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("booking", id)
		}
		return nil, &engine.StoreError{Op: "get booking", Err: err}
	}
	return &booking, nil
}

func (r *BookingRepository) ListBookings(ctx context.Context, f engine.BookingFilter) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Driver").
		Order("id DESC")

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.DriverID != 0 {
		q = q.Where("driver_id = ?", f.DriverID)
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where("pickup ILIKE ? OR dropoff ILIKE ?", pattern, pattern)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, &engine.StoreError{Op: "list bookings", Err: err}
	}
	return bookings, nil
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id uint, expected, next models.BookingStatus, finishedAt *time.Time) (*models.Booking, error) {
	updates := map[string]interface{}{"status": next}
	if finishedAt != nil {
		updates["finished_at"] = finishedAt
	}
	return r.compareAndSet(ctx, id, expected, updates)
}

func (r *BookingRepository) SetBookingDriver(ctx context.Context, id uint, expected models.BookingStatus, driverID uint, next models.BookingStatus) (*models.Booking, error) {
	return r.compareAndSet(ctx, id, expected, map[string]interface{}{
		"status":    next,
		"driver_id": driverID,
	})
}

// compareAndSet applies updates only if the stored status still equals
// expected. This is the final enforcement point against racing dashboards.
func (r *BookingRepository) compareAndSet(ctx context.Context, id uint, expected models.BookingStatus, updates map[string]interface{}) (*models.Booking, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return nil, &engine.StoreError{Op: "update booking", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or someone moved the status first.
		if _, err := r.GetBooking(ctx, id); err != nil {
			return nil, err
		}
		return nil, &engine.ConflictError{BookingID: id, Expected: expected}
	}
	return r.GetBooking(ctx, id)
}

func (r *BookingRepository) GetDriver(ctx context.Context, id uint) (*models.Driver, error) {
	var driver models.Driver
	if err := r.db.WithContext(ctx).First(&driver, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("driver", id)
		}
		return nil, &engine.StoreError{Op: "get driver", Err: err}
	}
	return &driver, nil
}

func (r *BookingRepository) GetDriverByEmail(ctx context.Context, email string) (*models.Driver, error) {
	var driver models.Driver
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Entity: "driver", Ref: email}
		}
		return nil, &engine.StoreError{Op: "get driver by email", Err: err}
	}
	return &driver, nil
}

func (r *BookingRepository) ListDrivers(ctx context.Context, status models.DriverStatus) ([]models.Driver, error) {
	q := r.db.WithContext(ctx).Order("name")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var drivers []models.Driver
	if err := q.Find(&drivers).Error; err != nil {
		return nil, &engine.StoreError{Op: "list drivers", Err: err}
	}
	return drivers, nil
}

func (r *BookingRepository) DriverHasActiveBooking(ctx context.Context, driverID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("driver_id = ? AND status = ?", driverID, models.BookingStatusAccepted).
		Count(&count).Error
	if err != nil {
		return false, &engine.StoreError{Op: "count active bookings", Err: err}
	}
	return count > 0, nil
}

func (r *BookingRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NewNotFoundError("user", id)
		}
		return nil, &engine.StoreError{Op: "get user", Err: err}
	}
	return &user, nil
}

func (r *BookingRepository) ListUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("name").
		Find(&users).Error
	if err != nil {
		return nil, &engine.StoreError{Op: "list users", Err: err}
	}
	return users, nil
}

// AdminStats counts customers, drivers and bookings inside one repeatable
// read transaction so the three numbers come from a single snapshot.
func (r *BookingRepository) AdminStats(ctx context.Context) (*engine.AdminStats, error) {
	stats := &engine.AdminStats{}
	err := r.snapshot(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("role = ?", models.UserRoleCustomer).Count(&stats.Customers).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Driver{}).Count(&stats.Drivers).Error; err != nil {
			return err
		}
		return tx.Model(&models.Booking{}).Count(&stats.Bookings).Error
	})
	if err != nil {
		return nil, &engine.StoreError{Op: "admin stats", Err: err}
	}
	return stats, nil
}

func (r *BookingRepository) DriverStatsFor(ctx context.Context, driverID uint) (*engine.DriverStats, error) {
	stats := &engine.DriverStats{}
	err := r.snapshot(ctx, func(tx *gorm.DB) error {
		bookings := func() *gorm.DB {
			return tx.Model(&models.Booking{}).Where("driver_id = ?", driverID)
		}
		if err := bookings().Count(&stats.Assigned).Error; err != nil {
			return err
		}
		if err := bookings().Where("status = ?", models.BookingStatusAccepted).Count(&stats.Active).Error; err != nil {
			return err
		}
		return bookings().Where("status = ?", models.BookingStatusCompleted).Count(&stats.Completed).Error
	})
	if err != nil {
		return nil, &engine.StoreError{Op: "driver stats", Err: err}
	}
	return stats, nil
}

func (r *BookingRepository) snapshot(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
}
