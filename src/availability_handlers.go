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

func availabilityHandlers(g *gin.RouterGroup, availability *common.AvailabilityManager) *gin.RouterGroup {
	g.
		POST("/Update", func(ctx *gin.Context) {
			var body types.UpdateAvailabilityRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date range (use format DD.MM.YYYY)"})
				return
			}
			start, err := utils.ParseWireDate(body.StartDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date range (use format DD.MM.YYYY)"})
				return
			}
			end, err := utils.ParseWireDate(body.EndDate)
			if err != nil || end.Before(start) {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date range (use format DD.MM.YYYY)"})
				return
			}

			daysUpdated, err := availability.UpdateRange(body.GuideID, start, end, types.AvailabilityStatus(body.Status))
			if err != nil {
				var conflict *common.BookedDatesError
				switch {
				case errors.As(err, &conflict):
					ctx.JSON(http.StatusConflict, gin.H{
						"success":     false,
						"message":     "Some dates are already booked and cannot be updated.",
						"bookedDates": utils.FormatWireDates(conflict.Dates),
					})
				case errors.Is(err, common.ErrGuideNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Guide not found"})
				default:
					log.Printf("Error updating availability: %s\n", err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
				}
				return
			}

			ctx.JSON(http.StatusOK, gin.H{
				"success":     true,
				"message":     "Availability updated successfully",
				"daysUpdated": daysUpdated,
			})
		}).
		GET("/Guide/:guide_id", func(ctx *gin.Context) {
			var params types.GuideAvailabilityRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Guide ID is required"})
				return
			}
			availableDates, bookedDates, err := availability.GetAvailability(params.GuideID)
			if err != nil {
				log.Printf("Error fetching guide availability: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"success":        true,
				"availableDates": utils.FormatWireDates(availableDates),
				"bookedDates":    utils.FormatWireDates(bookedDates),
			})
		})
	return g
}
