package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents a single ride request with a lifecycle status.
// Bookings are never hard-deleted; cancellation is a terminal status.
type Booking struct {
	gorm.Model
	CustomerID uint          `json:"customerId" gorm:"column:customer_id;not null"`
	Customer   *User         `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	DriverID   *uint         `json:"driverId,omitempty" gorm:"column:driver_id"`
	Driver     *Driver       `json:"driver,omitempty" gorm:"foreignKey:DriverID;constraint:OnDelete:SET NULL"`
	Pickup     string        `json:"pickup" gorm:"column:pickup;not null"`
	Dropoff    string        `json:"dropoff" gorm:"column:dropoff;not null"`
	Date       string        `json:"date" gorm:"column:date;not null"` // YYYY-MM-DD
	Time       string        `json:"time" gorm:"column:time;not null"` // HH:MM
	TaxiType   string        `json:"taxiType,omitempty" gorm:"column:taxi_type"`
	Status     BookingStatus `json:"status" gorm:"column:status;not null;default:'pending'"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty" gorm:"column:finished_at"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
