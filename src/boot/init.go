package boot

import (
	"log"

	"ygb/src/common"
	"ygb/src/config"
	"ygb/src/db"
	"ygb/src/lib"
	"ygb/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.GuideAvailability{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler registers the daily reconciliation sweep and starts the
// scheduler. The sweep result goes to the log; errors do not stop the next
// scheduled run.
func InitScheduler(sweeper *common.Sweeper) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	jobID, err := lib.CreateCronJob(config.SweepCrontab(), func() {
		result, err := sweeper.Run()
		if err != nil {
			log.Printf("[sweep] Error during scheduled run: %s\n", err.Error())
			return
		}
		log.Printf("[sweep] Bookings completed: %d, dates expired: %d\n", result.BookingsCompleted, result.DatesExpired)
	})
	if err != nil {
		log.Printf("Error registering sweep job: %s\n", err.Error())
		return
	}
	log.Printf("Registered sweep job %s with crontab %q\n", *jobID, config.SweepCrontab())
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
