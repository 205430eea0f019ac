package model

import (
	"time"

	"github.com/google/uuid"
)

type PlatformConnection struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_platform"`
	Platform     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_user_platform"`
	AccountName  string    `gorm:"type:varchar(255)"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text"`
	ExpiresAt    *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (PlatformConnection) TableName() string {
	return "platform_connections"
}
