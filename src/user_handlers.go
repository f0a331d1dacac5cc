package main

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"ygb/src/common"
	"ygb/src/config"
	"ygb/src/models"
	"ygb/src/types"
	"ygb/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	englishNameRe = regexp.MustCompile(`^[A-Za-z\s]+$`)
	usernameRe    = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// seedWindow is the calendar span created for a new guide: the current
// calendar year, or a fixed number of days from today when overridden.
func seedWindow(now time.Time) (time.Time, time.Time) {
	if days := config.CalendarSeedDays(); days > 0 {
		from := utils.Midnight(now)
		return from, from.AddDate(0, 0, days-1)
	}
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	return from, to
}

func userHandlers(g *gin.RouterGroup, d *gorm.DB) *gin.RouterGroup {
	g.POST("/CreateNewUser", func(ctx *gin.Context) {
		var body types.CreateUserRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": 0, "message": "Missing required fields"})
			return
		}
		if !englishNameRe.MatchString(body.Name) {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": 1, "message": "English only."})
			return
		}
		if !englishNameRe.MatchString(body.Surname) {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": 2, "message": "English only."})
			return
		}
		if !usernameRe.MatchString(body.Username) {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "errorCode": 3, "message": "English, numbers, symbols only."})
			return
		}

		user := models.User{
			Name:     body.Name,
			Surname:  body.Surname,
			Username: body.Username,
			Email:    body.Email,
			Role:     body.Role,
			Region:   body.Region,
			Country:  body.Country,
		}
		err := d.Transaction(func(tx *gorm.DB) error {
			var existing models.User
			err := tx.Model(&models.User{}).Where("email = ?", body.Email).First(&existing).Error
			if err == nil {
				return errDuplicateEmail
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			err = tx.Model(&models.User{}).Where("username = ?", body.Username).First(&existing).Error
			if err == nil {
				return errDuplicateUsername
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			// A guide account without a calendar is unusable, so seeding
			// commits or rolls back together with the user row.
			if types.UserRole(body.Role) == types.ROLE_GUIDE {
				from, to := seedWindow(time.Now())
				if _, err := common.NewAvailabilityManager(tx).SeedCalendar(user.ID, from, to); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			switch {
			case errors.Is(err, errDuplicateEmail):
				ctx.JSON(http.StatusConflict, gin.H{"success": false, "errorCode": 4, "message": "Another account uses this email."})
			case errors.Is(err, errDuplicateUsername):
				ctx.JSON(http.StatusConflict, gin.H{"success": false, "errorCode": 7, "message": "Username already taken."})
			case errors.Is(err, gorm.ErrDuplicatedKey):
				// The pre-checks race with concurrent creates; the unique
				// indexes are the backstop and the loser keeps the same wire
				// contract. The translated error carries no column, so look
				// the collision up (unscoped: soft-deleted rows still occupy
				// the indexes).
				var emailTaken int64
				d.Unscoped().Model(&models.User{}).Where("email = ?", body.Email).Count(&emailTaken)
				if emailTaken > 0 {
					ctx.JSON(http.StatusConflict, gin.H{"success": false, "errorCode": 4, "message": "Another account uses this email."})
				} else {
					ctx.JSON(http.StatusConflict, gin.H{"success": false, "errorCode": 7, "message": "Username already taken."})
				}
			default:
				log.Printf("Error creating user: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
			}
			return
		}

		ctx.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "User created successfully",
			"userId":  user.ID,
		})
	})
	return g
}

var (
	errDuplicateEmail    = errors.New("email already registered")
	errDuplicateUsername = errors.New("username already taken")
)
