package entity

import (
	"time"

	"github.com/google/uuid"
)

// PlatformConnection holds the OAuth grant linking a user's account on one
// external platform. One row per user+platform; re-linking overwrites.
type PlatformConnection struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Platform     string
	AccountName  string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Expired reports whether the stored access token is past its expiry.
func (p *PlatformConnection) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}
