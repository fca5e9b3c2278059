package boot

import (
	"log"
	"os"
	"strconv"
	"time"

	"pms/src/db"
	"pms/src/lib"
	"pms/src/models"
	"pms/src/utils"
)

func Run() {
	db := db.GetDb()
	err := db.AutoMigrate(
		&models.User{},
		&models.Contractor{},
		&models.Store{},
		&models.PassType{},
		&models.TicketSequence{},
		&models.Ticket{},
		&models.Transaction{},
		&models.Pass{},
		&models.TrailLog{},
	)
	if err != nil {
		log.Fatalf("could not run migrations: %s\n", err.Error())
	}

	// AutoMigrate cannot express a partial index. This one enforces at most
	// one open token per owner when two first-time requests race past the
	// row-lock guard in the issue workflow.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_owner_open
		ON tickets (owner_id) WHERE status = 'open'
	`).Error; err != nil {
		log.Fatalf("could not create index idx_tickets_owner_open: %s\n", err.Error())
	}

	if os.Getenv("SEED_REFERENCE_DATA") == "true" {
		seedReferenceData()
	}
}

// seedReferenceData fills the lookup tables for local development. Rows are
// only created when the tables are empty.
func seedReferenceData() {
	db := db.GetDb()

	var contractors int64
	db.Model(&models.Contractor{}).Count(&contractors)
	if contractors == 0 {
		db.Create(&[]models.Contractor{
			{Name: "Northgate Services", TaxID: "100200300", Active: true},
			{Name: "Harbor Logistics", TaxID: "400500600", Active: true},
		})
	}

	var stores int64
	db.Model(&models.Store{}).Count(&stores)
	if stores == 0 {
		db.Create(&[]models.Store{
			{Name: "Fresh Corner", Building: "A", Floor: "1", Line: "3", Unit: "12", Active: true},
			{Name: "Daily Goods", Building: "B", Floor: "2", Line: "1", Unit: "4", Active: true},
		})
	}

	var passTypes int64
	db.Model(&models.PassType{}).Count(&passTypes)
	if passTypes == 0 {
		db.Create(&[]models.PassType{
			{Name: "Day pass", Cost: 5, DurationDays: 1, Active: true},
			{Name: "Monthly pass", Cost: 60, DurationDays: 30, Active: true},
			{Name: "Quarterly pass", Cost: 150, DurationDays: 90, Active: true},
		})
	}
	log.Println("Reference data seeded")
}

// InitScheduler starts the background jobs. The stale-token sweep only runs
// when QUEUE_STALE_AFTER_HOURS is set; operators normally close abandoned
// tokens by hand.
func InitScheduler() {
	staleAfter := os.Getenv("QUEUE_STALE_AFTER_HOURS")
	if staleAfter == "" {
		return
	}
	hours, err := strconv.Atoi(staleAfter)
	if err != nil || hours < 1 {
		log.Printf("Invalid QUEUE_STALE_AFTER_HOURS value %q\n", staleAfter)
		return
	}
	age := time.Duration(hours) * time.Hour
	jobId, err := lib.CreateCronJob(func() {
		if _, err := utils.CloseStaleTokens(age); err != nil {
			log.Printf("Error sweeping stale tokens: %s\n", err.Error())
		}
	}, time.Hour)
	if err != nil {
		log.Printf("Error scheduling stale token sweep: %s\n", err.Error())
		return
	}
	log.Printf("Stale token sweep scheduled: %s\n", *jobId)

	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	sched.Start()
}
