package entity

import (
	"time"

	"github.com/google/uuid"
)

type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusScheduled ContentStatus = "scheduled"
	ContentStatusPublished ContentStatus = "published"
)

// ContentRecord is a generated social-media post owned by one user. Records
// are materialized by the assistant and then mutated directly through the
// record store (publish, schedule, draft, delete).
type ContentRecord struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Caption      string
	Hashtags     []string
	MediaUrls    []string
	Platform     string
	Status       ContentStatus
	ScheduledFor *time.Time
	PublishedAt  *time.Time
	ExternalId   *string
	Permalink    *string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}

func (c *ContentRecord) HashtagList() []string {
	return c.Hashtags
}

func (c *ContentRecord) MediaUrlList() []string {
	return c.MediaUrls
}
