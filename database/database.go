package database

import (
	"fmt"
	"log"

	config "github.com/nmgtoursjam/tours-backend/configs"
	"github.com/nmgtoursjam/tours-backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tour{},
		&models.Availability{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

// SeedCatalog inserts the starter categories and tours when the catalog is
// empty, so a fresh deployment has something to sell.
func SeedCatalog() {
	var count int64
	if err := DB.Model(&models.Category{}).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check catalog: %v", err)
		return
	}
	if count > 0 {
		log.Println("Catalog already seeded.")
		return
	}

	rafting := models.Category{
		Name:        "Rafting Tours",
		Slug:        "rafting",
		Description: "Experience the thrill of bamboo rafting on Jamaica's beautiful rivers",
		Icon:        "🚣",
	}
	culture := models.Category{
		Name:        "Cultural Experiences",
		Slug:        "culture",
		Description: "Immerse yourself in authentic Jamaican culture and traditions",
		Icon:        "🎭",
	}
	adventure := models.Category{
		Name:        "Adventure Tours",
		Slug:        "adventure",
		Description: "Exciting adventures for thrill-seekers",
		Icon:        "⛰️",
	}

	for _, cat := range []*models.Category{&rafting, &culture, &adventure} {
		if err := DB.Create(cat).Error; err != nil {
			log.Fatalf("🔥 Failed to seed category %s: %v", cat.Slug, err)
			return
		}
	}

	tours := []models.Tour{
		{
			CategoryID:   rafting.ID,
			Title:        "Martha Brae Rafting Experience",
			Slug:         "martha-brae-rafting-experience",
			Description:  "Drift down the tranquil Martha Brae River on a 30-foot bamboo raft guided by an experienced captain. This 3-mile journey takes approximately 1.5 hours through lush tropical scenery.",
			ShortDesc:    "Romantic bamboo rafting on the famous Martha Brae River with experienced guides",
			Price:        85.00,
			Currency:     "USD",
			Duration:     2,
			MaxGroupSize: 2,
			Difficulty:   "EASY",
			MeetingPoint: "Martha Brae Village, Trelawny",
			City:         "Falmouth",
			CoverImage:   "/tours/martha-brae-main.jpg",
			Included:     []string{"Bamboo raft ride (approx 1.5 hours)", "Experienced raft captain", "Welcome drink", "Life jackets"},
			NotIncluded:  []string{"Lunch and beverages", "Photos and videos", "Gratuities"},
			Highlights:   []string{"Glide down the scenic Martha Brae River", "Learn about local history and culture", "Spot tropical birds and wildlife"},
			WhatToBring:  []string{"Swimwear", "Sunscreen", "Camera"},
			Featured:     true,
		},
		{
			CategoryID:   culture.ID,
			Title:        "Falmouth Heritage Walking Tour",
			Slug:         "falmouth-heritage-walking-tour",
			Description:  "Walk through one of the Caribbean's best-preserved Georgian towns with a local historian. Visit the courthouse, the parish church and the bustling craft market while hearing the stories that shaped Falmouth.",
			ShortDesc:    "Guided walking tour through historic Georgian Falmouth",
			Price:        45.00,
			Currency:     "USD",
			Duration:     3,
			MaxGroupSize: 12,
			Difficulty:   "EASY",
			MeetingPoint: "Water Square, Falmouth",
			City:         "Falmouth",
			CoverImage:   "/tours/falmouth-heritage-main.jpg",
			Included:     []string{"Licensed local guide", "Bottled water", "Craft market visit"},
			NotIncluded:  []string{"Lunch", "Souvenirs", "Gratuities"},
			Highlights:   []string{"Georgian architecture", "Local history and folklore", "Authentic craft market"},
			WhatToBring:  []string{"Comfortable walking shoes", "Hat", "Sunscreen"},
		},
		{
			CategoryID:   adventure.ID,
			Title:        "Blue Mountain Sunrise Hike",
			Slug:         "blue-mountain-sunrise-hike",
			Description:  "A pre-dawn ascent to Blue Mountain Peak, the highest point in Jamaica, to watch the sunrise over the island. The hike covers roughly 6 miles round trip with an experienced mountain guide.",
			ShortDesc:    "Sunrise summit hike on Jamaica's highest peak",
			Price:        120.00,
			Currency:     "USD",
			Duration:     8,
			MaxGroupSize: 8,
			Difficulty:   "CHALLENGING",
			MeetingPoint: "Whitfield Hall, Penlyne Castle",
			City:         "Kingston",
			CoverImage:   "/tours/blue-mountain-main.jpg",
			Included:     []string{"Mountain guide", "Headlamp rental", "Hot breakfast after descent"},
			NotIncluded:  []string{"Transport to trailhead", "Warm clothing", "Gratuities"},
			Highlights:   []string{"Sunrise from 7,402 feet", "Coffee plantation views", "Cloud forest trails"},
			WhatToBring:  []string{"Warm layers", "Hiking boots", "2L of water"},
			Featured:     true,
		},
	}

	if err := DB.Create(&tours).Error; err != nil {
		log.Fatalf("🔥 Failed to seed tours: %v", err)
		return
	}

	log.Println("✅ Catalog seeded successfully")
}
