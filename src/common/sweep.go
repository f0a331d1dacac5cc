package common

import (
	"time"

	"ygb/src/models"
	"ygb/src/types"
	"ygb/src/utils"

	"gorm.io/gorm"
)

// SweepResult reports how many rows each step of a reconciliation run touched.
// Re-running with no intervening state change yields all zeros.
type SweepResult struct {
	BookingsCompleted int64 `json:"bookings_completed"`
	DatesExpired      int64 `json:"dates_expired"`
}

// Sweeper ages both stores forward against wall-clock time: confirmed
// bookings whose date has passed become completed, and available calendar
// cells in the past become unavailable. Booked cells are never touched, so a
// guide's calendar keeps a booked marker for past completed engagements.
type Sweeper struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSweeper(db *gorm.DB) *Sweeper {
	return &Sweeper{db: db, now: time.Now}
}

// Run executes both sweep steps. Each step is a single bulk UPDATE with an
// idempotent predicate; a failed run leaves whatever the storage engine
// committed and the next run picks up the remainder.
func (s *Sweeper) Run() (SweepResult, error) {
	today := utils.Midnight(s.now())
	var result SweepResult

	res := s.db.
		Model(&models.Booking{}).
		Where("status = ? AND booked_date < ?", types.BOOKING_CONFIRMED, today).
		Update("status", types.BOOKING_COMPLETED)
	if res.Error != nil {
		return result, res.Error
	}
	result.BookingsCompleted = res.RowsAffected

	res = s.db.
		Model(&models.GuideAvailability{}).
		Where("status = ? AND date < ?", types.AVAILABILITY_AVAILABLE, today).
		Update("status", types.AVAILABILITY_UNAVAILABLE)
	if res.Error != nil {
		return result, res.Error
	}
	result.DatesExpired = res.RowsAffected

	return result, nil
}
