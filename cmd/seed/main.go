package main

import (
	"context"
	"log"

	"github.com/spf13/pflag"

	"meetingrooms/internal/app"
	"meetingrooms/internal/database"
)

func main() {
	dsn := pflag.String("dsn", "meetingrooms.db", "database DSN (postgres:// URL or SQLite file)")
	reset := pflag.Bool("reset", false, "delete all reservations and rooms before seeding")
	pflag.Parse()

	db, err := database.Connect(*dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := app.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	if *reset {
		log.Println("Cleaning old data...")
		db.Exec("DELETE FROM reservations")
		db.Exec("DELETE FROM rooms")
	}

	n, err := app.Seed(context.Background(), db)
	if err != nil {
		log.Fatal("seed failed:", err)
	}
	log.Printf("seed done inserted=%d total=%d", n, len(app.SeedRooms()))
}
