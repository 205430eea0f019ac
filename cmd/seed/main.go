package main

import (
	"log"
	"os"

	"emily-marketing-be/internal/model"
	"emily-marketing-be/pkg/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Demo Account...")

	email := os.Getenv("SEED_EMAIL")
	if email == "" {
		email = "demo@emily.local"
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo1234"
	}

	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("User '%s' already exists, skipping...", email)
		SeedDemoRecords(db, existing.Id)
		log.Println("Seeding completed!")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Error: Failed to hash seed password:", err)
	}
	hashStr := string(hash)

	user := model.User{
		Email:         email,
		PasswordHash:  &hashStr,
		FullName:      "Demo User",
		BusinessName:  "Demo Coffee Roasters",
		Role:          "user",
		Status:        "active",
		EmailVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatal("Error: Failed to create demo user:", err)
	}
	log.Printf("Created demo user: %s", email)

	SeedDemoRecords(db, user.Id)

	log.Println("Seeding completed!")
}
