package models

import (
	"time"

	"ygb/src/types"
)

type Booking struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	GuideID      uint       `gorm:"index" json:"guide_id,omitempty"`
	TravelerID   uint       `gorm:"index" json:"traveler_id,omitempty"`
	BookedDate   time.Time  `gorm:"type:date" json:"booked_date,omitempty"`
	Status       string     `gorm:"default:'pending'" json:"status,omitempty"`
	Rate         *uint8     `json:"rate,omitempty"`
	Review       *string    `json:"review,omitempty"`
	DateReviewed *time.Time `json:"date_reviewed,omitempty"`

	Guide    *User `gorm:"foreignKey:guide_id" json:"guide,omitempty"`
	Traveler *User `gorm:"foreignKey:traveler_id" json:"traveler,omitempty"`

	types.Timestamps
}
