package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/models"
)

// RunSeeders creates the bootstrap admin account when no user exists yet.
func RunSeeders(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("Seeder skipped, users table not ready: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Seeder failed to hash default password: %v", err)
		return
	}

	admin := models.User{
		Name:       "Administrator",
		Email:      "admin@codigix.local",
		Password:   string(hashed),
		Department: models.DeptSales,
		IsActive:   true,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Seeder failed to create admin user: %v", err)
		return
	}

	log.Println("Seeded default admin user admin@codigix.local")
}
