package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ygb/src/utils"
)

var (
	ErrGuideNotFound   = errors.New("guide not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrDateUnavailable = errors.New("guide is not available on this date")
	ErrRequestInFlight = errors.New("a pending request already exists for this date")
	ErrAlreadyBooked   = errors.New("guide is already booked on this date")
	ErrNotPending      = errors.New("booking is not pending")
	ErrNotConfirmed    = errors.New("booking is not confirmed")
	ErrNotCancellable  = errors.New("only pending or confirmed bookings can be cancelled")
	ErrNotCompleted    = errors.New("only completed bookings can be reviewed")
)

// BookedDatesError rejects a range update that would overwrite booked calendar
// cells. It carries every blocking date so the caller can resolve the conflict.
type BookedDatesError struct {
	Dates []time.Time
}

func (e *BookedDatesError) Error() string {
	return fmt.Sprintf("dates already booked: %s", strings.Join(utils.FormatWireDates(e.Dates), ", "))
}
