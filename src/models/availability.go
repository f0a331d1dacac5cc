package models

import (
	"time"

	"ygb/src/types"
)

// GuideAvailability is one calendar cell: the status of a single guide on a
// single date. Rows are seeded in bulk when a guide account is created and
// only ever mutated through the availability manager or the booking engine.
type GuideAvailability struct {
	ID      uint      `gorm:"primarykey" json:"id"`
	GuideID uint      `gorm:"uniqueIndex:idx_guide_date" json:"guide_id"`
	Date    time.Time `gorm:"type:date;uniqueIndex:idx_guide_date" json:"date"`
	Status  string    `gorm:"default:'unavailable'" json:"status"`

	Guide *User `gorm:"foreignKey:guide_id" json:"guide,omitempty"`

	types.Timestamps
}
