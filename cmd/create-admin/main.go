package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"expert_panel_go/config"
	"expert_panel_go/db"
	"expert_panel_go/models"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(&models.Profile{}, &models.Session{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Admin Profile ===")
	fmt.Println()

	fmt.Print("First name: ")
	firstName, _ := reader.ReadString('\n')
	firstName = strings.TrimSpace(firstName)

	fmt.Print("Last name: ")
	lastName, _ := reader.ReadString('\n')
	lastName = strings.TrimSpace(lastName)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))

	if firstName == "" || lastName == "" || email == "" {
		log.Fatal("First name, last name, and email are required")
	}

	// Check if a profile already exists for this email
	var existing models.Profile
	if err := db.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Fatalf("Profile with email %s already exists (role: %s)", email, existing.Role)
	}

	now := time.Now()
	profile := &models.Profile{
		Role:         models.RoleAdmin,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		ReviewStatus: models.ReviewStatusApproved,
		OnboardedAt:  &now,
	}

	if err := db.DB.Create(profile).Error; err != nil {
		log.Fatalf("Failed to create profile: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ Admin profile created successfully!")
	fmt.Printf("  ID: %s\n", profile.ID)
	fmt.Printf("  Name: %s\n", profile.FullName())
	fmt.Printf("  Email: %s\n", profile.Email)
	fmt.Println()
	fmt.Println("Sign-in happens through the identity provider; once this")
	fmt.Println("email authenticates there it will map onto this profile.")
}
