package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentRecord struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Caption      string         `gorm:"type:text;not null"`
	Hashtags     datatypes.JSON `gorm:"type:jsonb"`
	MediaUrls    datatypes.JSON `gorm:"type:jsonb"`
	Platform     string         `gorm:"type:varchar(50);not null;index"`
	Status       string         `gorm:"type:varchar(50);not null;default:'draft';index"`
	ScheduledFor *time.Time     `gorm:"index"`
	PublishedAt  *time.Time
	ExternalId   *string        `gorm:"type:varchar(255)"`
	Permalink    *string        `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (ContentRecord) TableName() string {
	return "content_records"
}
