package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "active"
	DriverStatusInactive DriverStatus = "inactive"
)

// Driver is a registered taxi driver managed by the admin dashboard.
type Driver struct {
	gorm.Model
	Name               string       `json:"name" gorm:"column:name;not null"`
	Email              string       `json:"email" gorm:"column:email;unique;not null"`
	Phone              string       `json:"phone" gorm:"column:phone"`
	LicenseNumber      string       `json:"licenseNumber" gorm:"column:license_number"`
	RegistrationNumber string       `json:"registrationNumber" gorm:"column:registration_number"`
	Password           string       `json:"-" gorm:"-:all"`
	PasswordHash       string       `json:"-" gorm:"column:password_hash;not null"`
	Status             DriverStatus `json:"status" gorm:"column:status;not null;default:'active'"`
	PhotoPath          string       `json:"photoPath,omitempty" gorm:"column:photo_path"`
}

// TableName specifies the table name
func (Driver) TableName() string {
	return "drivers"
}

func (d *Driver) HashPassword() error {
	if d.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	d.PasswordHash = string(hashedPassword)
	return nil
}

func (d *Driver) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password))
}
