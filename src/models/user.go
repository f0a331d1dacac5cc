package models

import (
	"ygb/src/types"
)

type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
	Username string `gorm:"uniqueIndex" json:"username,omitempty"`
	Email    string `gorm:"uniqueIndex" json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`

	GuideBookings    []Booking `gorm:"foreignKey:guide_id" json:"guide_bookings,omitempty"`
	TravelerBookings []Booking `gorm:"foreignKey:traveler_id" json:"traveler_bookings,omitempty"`

	types.Timestamps
}
