package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeadRecord struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name      string         `gorm:"type:varchar(255);not null"`
	Email     string         `gorm:"type:varchar(255);index"`
	Phone     string         `gorm:"type:varchar(50)"`
	Company   string         `gorm:"type:varchar(255)"`
	Source    string         `gorm:"type:varchar(100)"`
	Status    string         `gorm:"type:varchar(50);not null;default:'new';index"`
	Notes     string         `gorm:"type:text"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (LeadRecord) TableName() string {
	return "lead_records"
}
