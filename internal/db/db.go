package db

import (
	"log"
	"os"

	"techblog/internal/config"
	"techblog/internal/models"
	"techblog/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := config.GlobalConfig.Database.DSN

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	if err := Seed(DB); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
}

// Seed creates the initial admin account on an empty database. Credentials
// come from ADMIN_EMAIL / ADMIN_PASSWORD; without them seeding is skipped.
func Seed(gdb *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := gdb.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     "Admin",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
		Avatar:   models.DefaultAvatar,
	}
	if err := gdb.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Seeded admin account %s", email)
	return nil
}

// Migrate runs AutoMigrate for every model; shared with the test harness.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.AuthorProfile{},
		&models.Post{},
		&models.PostLike{},
		&models.PostReaction{},
		&models.PostShare{},
		&models.Comment{},
		&models.Notification{},
	)
}
