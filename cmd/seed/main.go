package main

import (
	"log"

	"regdesk-be/internal/config"
	"regdesk-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.PoolConfig{}, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Category Catalog...")
	categories := SeedCategories(db)

	log.Println("Seeding Panchayaths...")
	panchayaths := SeedPanchayaths(db)

	log.Println("Seeding Sample Registrations...")
	SeedRegistrations(db, categories, panchayaths)

	log.Println("Seeding completed!")
}
