package config

import (
	"errors"
	"log"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/core/domain"
	"roomhub/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedData seeds a global admin and, in dev mode, a demo branch
// with a handful of rooms. Idempotent: existing rows are left alone.
func SeedData(db *gorm.DB, cfg *Config) error {
	if err := seedGlobalAdmin(db); err != nil {
		return err
	}

	if cfg.IsDev() {
		if err := seedDemoBranch(db); err != nil {
			return err
		}
	}

	return nil
}

func seedGlobalAdmin(db *gorm.DB) error {
	email := getEnv("SEED_ADMIN_EMAIL", "admin@roomhub.local")

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(getEnv("SEED_ADMIN_PASSWORD", "changeme123"))
	if err != nil {
		return err
	}

	admin := &models.User{
		FullName: "System Administrator",
		Email:    email,
		Password: hashed,
		Role:     domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded global admin [%s]", email)
	return nil
}

func seedDemoBranch(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Branch{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	branch := &models.Branch{
		Name:    "Central Branch",
		Address: "12 Nguyen Trai, District 1",
		Manager: "Demo Manager",
	}
	if err := db.Create(branch).Error; err != nil {
		return err
	}

	rooms := []models.Room{
		{BranchID: branch.ID, RoomNumber: "101", Price: 3000000, Area: 20},
		{BranchID: branch.ID, RoomNumber: "102", Price: 3200000, Area: 22},
		{BranchID: branch.ID, RoomNumber: "201", Price: 3500000, Area: 25},
	}
	for i := range rooms {
		rooms[i].Status = domain.RoomAvailable
		if err := db.Create(&rooms[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded demo branch with %d rooms", len(rooms))
	return nil
}
