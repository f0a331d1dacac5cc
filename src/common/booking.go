package common

import (
	"errors"
	"time"

	"ygb/src/models"
	"ygb/src/types"

	"gorm.io/gorm"
)

// BookingLifecycle drives every booking state transition and keeps the guide
// calendar in sync inside the same transaction. The state machine:
//
//	pending   -> confirmed | cancelled
//	confirmed -> cancelled | completed
//	completed -> reviewed
//
// cancelled and reviewed are terminal. completed is reached only by the sweep.
type BookingLifecycle struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBookingLifecycle(db *gorm.DB) *BookingLifecycle {
	return &BookingLifecycle{db: db, now: time.Now}
}

// Request creates a pending booking for (guide, date). The availability cell
// is read under lock so at most one request per (guide, date) can pass the
// conflict checks at a time. A pending request in flight and a confirmed
// booking are reported as distinct conflicts.
func (b *BookingLifecycle) Request(guideID, travelerID uint, date time.Time) (uint, error) {
	var bookingID uint
	err := b.db.Transaction(func(tx *gorm.DB) error {
		var slot models.GuideAvailability
		if err := lockForUpdate(tx).
			Model(&models.GuideAvailability{}).
			Where("guide_id = ? AND date = ?", guideID, date).
			First(&slot).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDateUnavailable
			}
			return err
		}

		var existing models.Booking
		err := tx.
			Model(&models.Booking{}).
			Where("guide_id = ? AND booked_date = ? AND status IN ?", guideID, date, []string{
				string(types.BOOKING_PENDING),
				string(types.BOOKING_CONFIRMED),
			}).
			First(&existing).
			Error
		if err == nil {
			if existing.Status == string(types.BOOKING_PENDING) {
				return ErrRequestInFlight
			}
			return ErrAlreadyBooked
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if slot.Status != string(types.AVAILABILITY_AVAILABLE) {
			return ErrDateUnavailable
		}

		booking := models.Booking{
			GuideID:    guideID,
			TravelerID: travelerID,
			BookedDate: date,
			Status:     string(types.BOOKING_PENDING),
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		bookingID = booking.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return bookingID, nil
}

// Accept confirms a pending booking and marks the calendar cell booked, as
// one atomic unit.
func (b *BookingLifecycle) Accept(bookingID uint) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		booking, err := b.lockBooking(tx, bookingID, 0)
		if err != nil {
			return err
		}
		if booking.Status != string(types.BOOKING_PENDING) {
			return ErrNotPending
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", bookingID).
			Update("status", types.BOOKING_CONFIRMED).
			Error; err != nil {
			return err
		}
		return b.setAvailability(tx, booking.GuideID, booking.BookedDate, types.AVAILABILITY_BOOKED)
	})
}

// Decline cancels a pending booking. The calendar cell stays available.
func (b *BookingLifecycle) Decline(bookingID uint) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		booking, err := b.lockBooking(tx, bookingID, 0)
		if err != nil {
			return err
		}
		if booking.Status != string(types.BOOKING_PENDING) {
			return ErrNotPending
		}
		return tx.
			Model(&models.Booking{}).
			Where("id = ?", bookingID).
			Update("status", types.BOOKING_CANCELLED).
			Error
	})
}

// Cancel is the guide-side cancellation of a confirmed booking: the booking
// is cancelled and the calendar cell reverts to available atomically.
func (b *BookingLifecycle) Cancel(bookingID uint) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		booking, err := b.lockBooking(tx, bookingID, 0)
		if err != nil {
			return err
		}
		if booking.Status != string(types.BOOKING_CONFIRMED) {
			return ErrNotConfirmed
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", bookingID).
			Update("status", types.BOOKING_CANCELLED).
			Error; err != nil {
			return err
		}
		return b.setAvailability(tx, booking.GuideID, booking.BookedDate, types.AVAILABILITY_AVAILABLE)
	})
}

// TravelerCancel cancels the traveler's own pending or confirmed booking.
// Availability is restored only when the prior state was confirmed; a pending
// request never took the slot.
func (b *BookingLifecycle) TravelerCancel(bookingID, travelerID uint) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		booking, err := b.lockBooking(tx, bookingID, travelerID)
		if err != nil {
			return err
		}
		wasConfirmed := booking.Status == string(types.BOOKING_CONFIRMED)
		if !wasConfirmed && booking.Status != string(types.BOOKING_PENDING) {
			return ErrNotCancellable
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", bookingID).
			Update("status", types.BOOKING_CANCELLED).
			Error; err != nil {
			return err
		}
		if wasConfirmed {
			return b.setAvailability(tx, booking.GuideID, booking.BookedDate, types.AVAILABILITY_AVAILABLE)
		}
		return nil
	})
}

// LeaveReview attaches a rate and optional review text to the traveler's
// completed booking and moves it to the terminal reviewed state.
func (b *BookingLifecycle) LeaveReview(bookingID, travelerID uint, rate uint8, review *string) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		booking, err := b.lockBooking(tx, bookingID, travelerID)
		if err != nil {
			return err
		}
		if booking.Status != string(types.BOOKING_COMPLETED) {
			return ErrNotCompleted
		}
		reviewedAt := b.now()
		return tx.
			Model(&models.Booking{}).
			Where("id = ?", bookingID).
			Updates(map[string]any{
				"status":        types.BOOKING_REVIEWED,
				"rate":          rate,
				"review":        review,
				"date_reviewed": reviewedAt,
			}).
			Error
	})
}

// lockBooking loads a booking under row lock. travelerID 0 skips the
// ownership check; otherwise a mismatch reads as not-found, same as the
// wire-level "not found or access denied".
func (b *BookingLifecycle) lockBooking(tx *gorm.DB, bookingID, travelerID uint) (*models.Booking, error) {
	q := lockForUpdate(tx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID)
	if travelerID != 0 {
		q = q.Where("traveler_id = ?", travelerID)
	}
	var booking models.Booking
	if err := q.First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (b *BookingLifecycle) setAvailability(tx *gorm.DB, guideID uint, date time.Time, status types.AvailabilityStatus) error {
	return tx.
		Model(&models.GuideAvailability{}).
		Where("guide_id = ? AND date = ?", guideID, date).
		Update("status", status).
		Error
}

// BookingListFilter narrows booking listings. The Completed flag includes
// reviewed rows; a review does not make the engagement less completed.
type BookingListFilter struct {
	Start     *time.Time
	End       *time.Time
	Pending   bool
	Confirmed bool
	Completed bool
}

func (f BookingListFilter) statuses() []string {
	var statuses []string
	if f.Pending {
		statuses = append(statuses, string(types.BOOKING_PENDING))
	}
	if f.Confirmed {
		statuses = append(statuses, string(types.BOOKING_CONFIRMED))
	}
	if f.Completed {
		statuses = append(statuses, string(types.BOOKING_COMPLETED), string(types.BOOKING_REVIEWED))
	}
	return statuses
}

// BookingSummary is one row of a booking listing, joined with the counterpart
// user's identity fields.
type BookingSummary struct {
	BookingID  uint      `json:"booking_id"`
	GuideID    uint      `json:"guide_id"`
	TravelerID uint      `json:"traveler_id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Email      string    `json:"email"`
	BookedDate time.Time `json:"-"`
	Status     string    `json:"status"`
	Rate       *uint8    `json:"rate"`
	Review     *string   `json:"review"`
}

// ListTravelerBookings lists a traveler's bookings joined with each guide's
// identity, oldest booked date first.
func (b *BookingLifecycle) ListTravelerBookings(travelerID uint, filter BookingListFilter) ([]BookingSummary, error) {
	return b.listBookings("bookings.traveler_id = ?", travelerID, "bookings.guide_id", filter)
}

// ListGuideBookings lists a guide's bookings joined with each traveler's
// identity, oldest booked date first.
func (b *BookingLifecycle) ListGuideBookings(guideID uint, filter BookingListFilter) ([]BookingSummary, error) {
	return b.listBookings("bookings.guide_id = ?", guideID, "bookings.traveler_id", filter)
}

func (b *BookingLifecycle) listBookings(ownerCond string, ownerID uint, joinColumn string, filter BookingListFilter) ([]BookingSummary, error) {
	q := b.db.
		Model(&models.Booking{}).
		Select("bookings.id AS booking_id, bookings.guide_id, bookings.traveler_id, u.username, u.name, u.surname, u.email, bookings.booked_date, bookings.status, bookings.rate, bookings.review").
		Joins("JOIN users u ON u.id = "+joinColumn+" AND u.deleted_at IS NULL").
		Where(ownerCond, ownerID)
	if filter.Start != nil && filter.End != nil {
		q = q.Where("bookings.booked_date BETWEEN ? AND ?", *filter.Start, *filter.End)
	}
	if statuses := filter.statuses(); len(statuses) > 0 {
		q = q.Where("bookings.status IN ?", statuses)
	}
	var items []BookingSummary
	if err := q.Order("bookings.booked_date ASC").Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GuideReview is one published review of a guide.
type GuideReview struct {
	UserID     uint       `json:"user_id"`
	Username   string     `json:"username"`
	Rate       uint8      `json:"rate"`
	Comment    *string    `json:"comment"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

// GuideReviews lists rated completed/reviewed bookings for a guide, newest
// review first.
func (b *BookingLifecycle) GuideReviews(guideID uint) ([]GuideReview, error) {
	var reviews []GuideReview
	err := b.db.
		Model(&models.Booking{}).
		Select("bookings.traveler_id AS user_id, u.username, bookings.rate, bookings.review AS comment, bookings.date_reviewed AS reviewed_at").
		Joins("JOIN users u ON u.id = bookings.traveler_id AND u.deleted_at IS NULL").
		Where("bookings.guide_id = ? AND bookings.status IN ? AND bookings.rate IS NOT NULL", guideID, []string{
			string(types.BOOKING_COMPLETED),
			string(types.BOOKING_REVIEWED),
		}).
		Order("bookings.date_reviewed DESC").
		Scan(&reviews).
		Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
