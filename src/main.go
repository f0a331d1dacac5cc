package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"time"

	"ygb/src/boot"
	"ygb/src/common"
	"ygb/src/config"
	"ygb/src/middlewares"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"
)

var wireDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(config.WIRE_DATE_FORMAT, date)
	return err == nil
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.RequestID)
	router.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Welcome to YouthfulGuides.app!")
	})
	router.GET("/ping", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Server is alive")
	})
	router.GET("/favicon.ico", func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return router
}

// mountRoutes wires every route group to engine instances sharing the given
// storage handle.
func mountRoutes(router *gin.Engine, d *gorm.DB) {
	availability := common.NewAvailabilityManager(d)
	bookings := common.NewBookingLifecycle(d)
	sweeper := common.NewSweeper(d)

	userHandlers(router.Group("/Users"), d)
	availabilityHandlers(router.Group("/Availability"), availability)
	bookingHandlers(router.Group("/Bookings"), bookings)
	availableGuidesHandlers(router.Group("/AvailableGuides"), availability)
	guideReviewsHandlers(router.Group("/GuideReviews"), bookings)
	adminHandlers(router.Group("/Admin"), sweeper)
}

func adminHandlers(g *gin.RouterGroup, sweeper *common.Sweeper) *gin.RouterGroup {
	g.POST("/RunSweep", func(ctx *gin.Context) {
		result, err := sweeper.Run()
		if err != nil {
			log.Printf("[sweep] Error during manual run: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"success":            true,
			"message":            "Sweep completed",
			"bookings_completed": result.BookingsCompleted,
			"dates_expired":      result.DatesExpired,
		})
	})
	return g
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	d := boot.InitDb()
	boot.InitScheduler(common.NewSweeper(d))
	defer boot.StopScheduler()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("wiredate", wireDateValidatorFunc)
	}

	mountRoutes(router, d)

	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
