package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserOwnedBy scopes a query to records owned by one user. Every record
// mutation goes through this filter so ownership is enforced server-side.
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByPlatform struct {
	Platform string
}

func (s ByPlatform) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("platform = ?", s.Platform)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ScheduledBefore selects content whose scheduled time has passed.
type ScheduledBefore struct {
	Cutoff time.Time
}

func (s ScheduledBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scheduled_for IS NOT NULL AND scheduled_for <= ?", s.Cutoff)
}
