package main

import (
	"fmt"
	"log"
	"time"

	"regdesk-be/internal/model"

	"gorm.io/gorm"
)

// SeedCategories creates the default catalog, skipping names that exist.
// Returns every category keyed by English name.
func SeedCategories(db *gorm.DB) map[string]model.Category {
	defaults := []model.Category{
		{NameEnglish: "Farmer", NameMalayalam: "കർഷകൻ", ExpiryDays: 365, IsActive: true},
		{NameEnglish: "Fisherman", NameMalayalam: "മത്സ്യത്തൊഴിലാളി", ExpiryDays: 180, IsActive: true},
		{NameEnglish: "Entrepreneur", NameMalayalam: "സംരംഭകൻ", ExpiryDays: 90, IsActive: true},
		{NameEnglish: "Job Seeker", NameMalayalam: "തൊഴിലന്വേഷകൻ", ExpiryDays: 30, IsActive: true},
		{NameEnglish: "Student", NameMalayalam: "വിദ്യാർത്ഥി", ExpiryDays: 30, IsActive: true},
	}

	result := make(map[string]model.Category, len(defaults))
	for _, c := range defaults {
		var existing model.Category
		if err := db.Where("name_english = ?", c.NameEnglish).First(&existing).Error; err == nil {
			log.Printf("Category '%s' already exists, skipping...", c.NameEnglish)
			result[c.NameEnglish] = existing
			continue
		}

		if err := db.Create(&c).Error; err != nil {
			log.Printf("Error creating category '%s': %v", c.NameEnglish, err)
			continue
		}
		log.Printf("Created category: %s (%d days)", c.NameEnglish, c.ExpiryDays)
		result[c.NameEnglish] = c
	}
	return result
}

func SeedPanchayaths(db *gorm.DB) []model.Panchayath {
	defaults := []model.Panchayath{
		{Name: "Kadampuzha", District: "Malappuram", IsActive: true},
		{Name: "Vengara", District: "Malappuram", IsActive: true},
		{Name: "Kunnamangalam", District: "Kozhikode", IsActive: true},
		{Name: "Olavanna", District: "Kozhikode", IsActive: true},
	}

	var result []model.Panchayath
	for _, p := range defaults {
		var existing model.Panchayath
		if err := db.Where("name = ? AND district = ?", p.Name, p.District).First(&existing).Error; err == nil {
			result = append(result, existing)
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			log.Printf("Error creating panchayath '%s': %v", p.Name, err)
			continue
		}
		result = append(result, p)
	}
	return result
}

// SeedRegistrations adds one registration per expiry situation so the alert
// panel has something to show on a fresh database.
func SeedRegistrations(db *gorm.DB, categories map[string]model.Category, panchayaths []model.Panchayath) {
	if len(categories) == 0 || len(panchayaths) == 0 {
		log.Println("No categories or panchayaths, skipping registrations")
		return
	}

	now := time.Now()
	days := func(n int) *time.Time {
		t := now.AddDate(0, 0, n)
		return &t
	}
	admin := "seed@regdesk.local"

	samples := []struct {
		name     string
		category string
		status   string
		expiry   *time.Time
	}{
		{"Anil Kumar", "Farmer", "pending", days(-2)},
		{"Beena Thomas", "Fisherman", "pending", days(0)},
		{"Chandran P", "Entrepreneur", "pending", days(2)},
		{"Deepa Nair", "Job Seeker", "pending", days(20)},
		{"Fathima K", "Student", "pending", nil},
		{"Gopalan V", "Farmer", "approved", days(300)},
		{"Hari Das", "Student", "rejected", days(-10)},
	}

	for i, s := range samples {
		cat, ok := categories[s.category]
		if !ok {
			continue
		}
		customerID := fmt.Sprintf("SEED-%04d", i+1)

		var existing model.Registration
		if err := db.Where("customer_id = ?", customerID).First(&existing).Error; err == nil {
			continue
		}

		p := panchayaths[i%len(panchayaths)]
		reg := model.Registration{
			CustomerId:   customerID,
			FullName:     s.name,
			MobileNumber: fmt.Sprintf("94470%05d", i+1),
			Address:      p.Name + ", " + p.District,
			Ward:         fmt.Sprintf("%d", i+1),
			PanchayathId: &p.Id,
			CategoryId:   cat.Id,
			Status:       s.status,
			Fee:          100,
			ExpiryDate:   s.expiry,
		}
		if s.status == "approved" {
			reg.ApprovedDate = &now
			reg.ApprovedBy = &admin
		}

		if err := db.Create(&reg).Error; err != nil {
			log.Printf("Error creating registration '%s': %v", s.name, err)
			continue
		}
		log.Printf("Created registration: %s (%s, %s)", s.name, s.category, s.status)
	}
}
