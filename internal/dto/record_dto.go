// FILE: internal/dto/record_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type ContentRecordResponse struct {
	Id           uuid.UUID  `json:"id"`
	Caption      string     `json:"caption"`
	Platform     string     `json:"platform,omitempty"`
	Hashtags     []string   `json:"hashtags,omitempty"`
	MediaUrls    []string   `json:"media_urls,omitempty"`
	Status       string     `json:"status"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	Permalink    string     `json:"permalink,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type LeadRecordResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Source    string    `json:"source,omitempty"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordCreatedEvent is pushed over the feed when new content or leads land.
type RecordCreatedEvent struct {
	UserId     uuid.UUID `json:"user_id"`
	RecordType string    `json:"record_type"` // "content" | "lead"
	RecordId   uuid.UUID `json:"record_id"`
	CreatedAt  time.Time `json:"created_at"`
}
