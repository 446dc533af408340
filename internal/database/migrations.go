package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Student{},
		&models.Notification{},
		&models.NotificationLog{},
	)
}

func ptr(v string) *string { return &v }

// DemoStudents is the roster inserted by SeedData into an empty directory.
func DemoStudents() []models.Student {
	return []models.Student{
		{FirstName: "Ada", LastName: "Lovelace", Email: ptr("ada@students.example.com"), Phone: ptr("+15550100"), IsActive: true},
		{FirstName: "Alan", LastName: "Turing", Email: ptr("alan@students.example.com"), Phone: ptr("+15550101"), IsActive: true},
		{FirstName: "Grace", LastName: "Hopper", Email: ptr("grace@students.example.com"), Phone: ptr("+15550102"), IsActive: true},
	}
}

// SeedData populates the student directory when it is empty.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Student{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	students := DemoStudents()
	return db.Create(&students).Error
}
