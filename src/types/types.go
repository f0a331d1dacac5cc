package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type UserRole string

const (
	ROLE_GUIDE    UserRole = "guide"
	ROLE_TRAVELER UserRole = "traveler"
)

type AvailabilityStatus string

const (
	AVAILABILITY_AVAILABLE   AvailabilityStatus = "available"
	AVAILABILITY_UNAVAILABLE AvailabilityStatus = "unavailable"
	AVAILABILITY_BOOKED      AvailabilityStatus = "booked"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELLED BookingStatus = "cancelled"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_REVIEWED  BookingStatus = "reviewed"
)

type UpdateAvailabilityRequestBody struct {
	GuideID   uint   `json:"guide_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required,wiredate"`
	EndDate   string `json:"end_date" binding:"required,wiredate"`
	Status    string `json:"status" binding:"required,oneof=available unavailable booked"`
}

type GuideAvailabilityRequestParams struct {
	GuideID uint `uri:"guide_id" binding:"required"`
}

type CreateBookingRequestBody struct {
	GuideID    uint   `json:"guide_id" binding:"required"`
	TravelerID uint   `json:"traveler_id" binding:"required"`
	Date       string `json:"date" binding:"required,wiredate"`
}

type BookingActionRequestBody struct {
	BookingID uint `json:"booking_id" binding:"required"`
}

type TravelerCancelRequestBody struct {
	BookingID  uint `json:"booking_id" binding:"required"`
	TravelerID uint `json:"traveler_id" binding:"required"`
}

type LeaveReviewRequestBody struct {
	BookingID  uint    `json:"booking_id" binding:"required"`
	TravelerID uint    `json:"traveler_id" binding:"required"`
	Rate       uint8   `json:"rate" binding:"required,min=1,max=5"`
	Review     *string `json:"review,omitempty"`
}

type BookingListRequestQuery struct {
	TravelerID uint   `form:"traveler_id"`
	GuideID    uint   `form:"guide_id"`
	StartDate  string `form:"start_date" binding:"omitempty,wiredate"`
	EndDate    string `form:"end_date" binding:"omitempty,wiredate"`
	Pending    bool   `form:"pending"`
	Confirmed  bool   `form:"confirmed"`
	Completed  bool   `form:"completed"`
}

type AvailableGuidesRequestQuery struct {
	Start   string `form:"start" binding:"required,wiredate"`
	End     string `form:"end" binding:"required,wiredate"`
	Country string `form:"country" binding:"required"`
	Skip    int    `form:"skip"`
	Take    int    `form:"take"`
}

type GuideReviewsRequestParams struct {
	GuideID uint `uri:"guide_id" binding:"required"`
}

type CreateUserRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required,oneof=guide traveler"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`
}
