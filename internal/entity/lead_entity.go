package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
)

// LeadRecord is one CRM lead owned by a user.
type LeadRecord struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Email     string
	Phone     string
	Company   string
	Source    string
	Status    LeadStatus
	Notes     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
