package main

import (
	"log"

	"emily-marketing-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedDemoRecords populates sample content drafts and leads for a user.
func SeedDemoRecords(db *gorm.DB, userId uuid.UUID) {
	var count int64
	db.Model(&model.ContentRecord{}).Where("user_id = ?", userId).Count(&count)
	if count > 0 {
		log.Println("Demo records already exist, skipping...")
		return
	}

	contents := []model.ContentRecord{
		{
			UserId:    userId,
			Caption:   "Fresh roast just landed! Our single-origin Ethiopian beans are back in stock.",
			Hashtags:  datatypes.JSON([]byte(`["#coffee", "#freshroast", "#smallbusiness"]`)),
			MediaUrls: datatypes.JSON([]byte(`[]`)),
			Platform:  "instagram",
			Status:    "draft",
		},
		{
			UserId:    userId,
			Caption:   "Behind the scenes: how we cup every batch before it ships.",
			Hashtags:  datatypes.JSON([]byte(`["#behindthescenes", "#specialtycoffee"]`)),
			MediaUrls: datatypes.JSON([]byte(`[]`)),
			Platform:  "facebook",
			Status:    "draft",
		},
	}

	for _, c := range contents {
		if err := db.Create(&c).Error; err != nil {
			log.Printf("Error creating demo content: %v", err)
		} else {
			log.Printf("Created demo content: %s", c.Platform)
		}
	}

	leads := []model.LeadRecord{
		{
			UserId:  userId,
			Name:    "Ava Thompson",
			Email:   "ava@cornercafe.example",
			Phone:   "+1-555-0142",
			Company: "Corner Cafe",
			Source:  "instagram_comment",
			Status:  "new",
		},
		{
			UserId:  userId,
			Name:    "Marcus Lee",
			Email:   "marcus@officebrew.example",
			Company: "Office Brew Co",
			Source:  "website_form",
			Status:  "contacted",
			Notes:   "Interested in wholesale pricing for 5kg bags.",
		},
	}

	for _, l := range leads {
		if err := db.Create(&l).Error; err != nil {
			log.Printf("Error creating demo lead: %v", err)
		} else {
			log.Printf("Created demo lead: %s", l.Name)
		}
	}
}
