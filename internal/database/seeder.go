// server/internal/database/seeder.go
package database

import (
	"context"
	"log"

	"fleet-coordinator-api-server/internal/auth"
	"fleet-coordinator-api-server/internal/models"
	"fleet-coordinator-api-server/internal/store"
)

// SeedAdmin makes sure the administrator account exists. Safe to run on
// every startup.
func SeedAdmin(users *store.UserStore) error {
	adminEmail := "admin@flota.local"

	count, err := users.CountByEmail(context.Background(), adminEmail)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword("adminpassword")
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:   "admin",
		Email:    adminEmail,
		Name:     "Administrador",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		Status:   "active",
	}

	if err := users.Insert(context.Background(), admin); err != nil {
		return err
	}

	log.Println("Admin seeded successfully.")
	return nil
}
