package main

import (
	"errors"
	"log"
	"net/http"

	"ygb/src/common"
	"ygb/src/types"
	"ygb/src/utils"

	"github.com/gin-gonic/gin"
)

// engineErrorResponse maps a lifecycle engine error to the wire taxonomy:
// unknown rows are 404, wrong-state or occupied-date transitions are 409,
// anything else is a storage failure.
func engineErrorResponse(ctx *gin.Context, err error) {
	var status int
	var message string
	switch {
	case errors.Is(err, common.ErrBookingNotFound):
		status, message = http.StatusNotFound, "Booking not found or access denied"
	case errors.Is(err, common.ErrDateUnavailable):
		status, message = http.StatusConflict, "Guide is not available on this date"
	case errors.Is(err, common.ErrRequestInFlight):
		status, message = http.StatusConflict, "A pending booking request is already in flight for this date"
	case errors.Is(err, common.ErrAlreadyBooked):
		status, message = http.StatusConflict, "Guide is already booked on this date"
	case errors.Is(err, common.ErrNotPending):
		status, message = http.StatusConflict, "Only pending bookings can be accepted or declined"
	case errors.Is(err, common.ErrNotConfirmed):
		status, message = http.StatusConflict, "Only confirmed bookings can be cancelled by the guide"
	case errors.Is(err, common.ErrNotCancellable):
		status, message = http.StatusConflict, "Only pending or confirmed bookings can be cancelled"
	case errors.Is(err, common.ErrNotCompleted):
		status, message = http.StatusConflict, "Only completed bookings can be reviewed"
	default:
		log.Printf("Booking engine error: %s\n", err.Error())
		status, message = http.StatusInternalServerError, "Server error"
	}
	ctx.JSON(status, gin.H{"success": false, "message": message})
}

func bookingHandlers(g *gin.RouterGroup, bookings *common.BookingLifecycle) *gin.RouterGroup {
	g.
		POST("/Request", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields or invalid date format. Expected DD.MM.YYYY"})
				return
			}
			date, err := utils.ParseWireDate(body.Date)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format. Expected DD.MM.YYYY"})
				return
			}
			bookingID, err := bookings.Request(body.GuideID, body.TravelerID, date)
			if err != nil {
				engineErrorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"success":    true,
				"message":    "Booking request created",
				"booking_id": bookingID,
			})
		}).
		POST("/Accept", func(ctx *gin.Context) {
			var body types.BookingActionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing booking ID"})
				return
			}
			if err := bookings.Accept(body.BookingID); err != nil {
				engineErrorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking confirmed and availability updated"})
		}).
		POST("/Decline", func(ctx *gin.Context) {
			var body types.BookingActionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing booking ID"})
				return
			}
			if err := bookings.Decline(body.BookingID); err != nil {
				engineErrorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking declined and marked as cancelled"})
		}).
		POST("/Cancel", func(ctx *gin.Context) {
			var body types.BookingActionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing booking ID"})
				return
			}
			if err := bookings.Cancel(body.BookingID); err != nil {
				engineErrorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking cancelled and availability restored"})
		}).
		POST("/Traveler/CancelBooking", func(ctx *gin.Context) {
			var body types.TravelerCancelRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing booking ID or traveler ID"})
				return
			}
			if err := bookings.TravelerCancel(body.BookingID, body.TravelerID); err != nil {
				engineErrorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking cancelled successfully"})
		}).
		POST("/Traveler/LeaveReview", func(ctx *gin.Context) {
			var body types.LeaveReviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields or rate out of range (1-5)"})
				return
			}
			if err := bookings.LeaveReview(body.BookingID, body.TravelerID, body.Rate, body.Review); err != nil {
				engineErrorResponse(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Review submitted successfully"})
		}).
		GET("/TravelerBookings", func(ctx *gin.Context) {
			var query types.BookingListRequestQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format. Use DD.MM.YYYY"})
				return
			}
			if query.TravelerID == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing traveler ID"})
				return
			}
			filter, err := listFilterFromQuery(query)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format. Use DD.MM.YYYY"})
				return
			}
			items, err := bookings.ListTravelerBookings(query.TravelerID, filter)
			if err != nil {
				log.Printf("Error listing traveler bookings: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, bookingListResponse(items))
		}).
		GET("/GuideBookings", func(ctx *gin.Context) {
			var query types.BookingListRequestQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format. Use DD.MM.YYYY"})
				return
			}
			if query.GuideID == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing guide ID"})
				return
			}
			filter, err := listFilterFromQuery(query)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format. Use DD.MM.YYYY"})
				return
			}
			items, err := bookings.ListGuideBookings(query.GuideID, filter)
			if err != nil {
				log.Printf("Error listing guide bookings: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, bookingListResponse(items))
		})
	return g
}

func listFilterFromQuery(query types.BookingListRequestQuery) (common.BookingListFilter, error) {
	filter := common.BookingListFilter{
		Pending:   query.Pending,
		Confirmed: query.Confirmed,
		Completed: query.Completed,
	}
	if query.StartDate != "" && query.EndDate != "" {
		start, err := utils.ParseWireDate(query.StartDate)
		if err != nil {
			return filter, err
		}
		end, err := utils.ParseWireDate(query.EndDate)
		if err != nil {
			return filter, err
		}
		filter.Start = &start
		filter.End = &end
	}
	return filter, nil
}

func bookingListResponse(items []common.BookingSummary) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{
			"booking_id":  item.BookingID,
			"guide_id":    item.GuideID,
			"traveler_id": item.TravelerID,
			"username":    item.Username,
			"name":        item.Name,
			"surname":     item.Surname,
			"email":       item.Email,
			"booked_date": utils.FormatWireDate(item.BookedDate),
			"status":      item.Status,
			"rate":        item.Rate,
			"review":      item.Review,
		})
	}
	return out
}
