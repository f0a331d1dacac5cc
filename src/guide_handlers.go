package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"ygb/src/common"
	"ygb/src/lib"
	"ygb/src/types"
	"ygb/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const availableGuidesCacheTTL = 60 * time.Second

func availableGuidesHandlers(g *gin.RouterGroup, availability *common.AvailabilityManager) *gin.RouterGroup {
	g.GET("", func(ctx *gin.Context) {
		var query types.AvailableGuidesRequestQuery
		if err := ctx.ShouldBindQuery(&query); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing parameters"})
			return
		}
		start, err := utils.ParseWireDate(query.Start)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format. Use DD.MM.YYYY"})
			return
		}
		end, err := utils.ParseWireDate(query.End)
		if err != nil || end.Before(start) {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format. Use DD.MM.YYYY"})
			return
		}

		cacheKey := fmt.Sprintf("availableGuides:%s:%s:%s:%d:%d", query.Start, query.End, query.Country, query.Skip, query.Take)
		rd := lib.GetRedisClient()
		if rd != nil {
			cached, err := rd.Get(context.Background(), cacheKey).Result()
			if err == nil {
				ctx.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
				return
			}
			if err != redis.Nil {
				log.Printf("[redis] Error reading %s: %s\n", cacheKey, err.Error())
			}
		}

		total, guides, err := availability.FindAvailableGuides(start, end, query.Country, query.Skip, query.Take)
		if err != nil {
			log.Printf("AvailableGuides error: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
			return
		}

		payload := gin.H{
			"success":                true,
			"total_available_guides": total,
			"guides":                 guides,
		}
		if rd != nil {
			if raw, err := json.Marshal(payload); err == nil {
				if err := rd.SetEx(context.Background(), cacheKey, raw, availableGuidesCacheTTL).Err(); err != nil {
					log.Printf("[redis] Error caching %s: %s\n", cacheKey, err.Error())
				}
			}
		}
		ctx.JSON(http.StatusOK, payload)
	})
	return g
}

func guideReviewsHandlers(g *gin.RouterGroup, bookings *common.BookingLifecycle) *gin.RouterGroup {
	g.GET("/:guide_id", func(ctx *gin.Context) {
		var params types.GuideReviewsRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing guide ID"})
			return
		}
		reviews, err := bookings.GuideReviews(params.GuideID)
		if err != nil {
			log.Printf("Error fetching guide reviews: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"success":  true,
			"guide_id": params.GuideID,
			"reviews":  reviews,
		})
	})
	return g
}
