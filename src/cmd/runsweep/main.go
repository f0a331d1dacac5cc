// runsweep triggers one reconciliation sweep and exits. Unlike the scheduled
// job it reports failure through the exit code, so it can back an operational
// recovery playbook or a cron fallback.
package main

import (
	"log"
	"os"
	"path"

	"ygb/src/boot"
	"ygb/src/common"

	"github.com/joho/godotenv"
)

func main() {
	if os.Getenv("API_ENV") == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("Error loading .env: %s\n", err.Error())
		}
	}

	d := boot.InitDb()
	sweeper := common.NewSweeper(d)
	result, err := sweeper.Run()
	if err != nil {
		log.Printf("[sweep] Error during manual run: %s\n", err.Error())
		os.Exit(1)
	}
	log.Printf("[sweep] Bookings completed: %d, dates expired: %d\n", result.BookingsCompleted, result.DatesExpired)
}
