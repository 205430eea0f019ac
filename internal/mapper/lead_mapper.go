package mapper

import (
	"time"

	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/model"

	"gorm.io/gorm"
)

type LeadMapper struct{}

func NewLeadMapper() *LeadMapper {
	return &LeadMapper{}
}

func (m *LeadMapper) ToEntity(l *model.LeadRecord) *entity.LeadRecord {
	if l == nil {
		return nil
	}

	var deletedAt *time.Time
	if l.DeletedAt.Valid {
		t := l.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !l.UpdatedAt.IsZero() {
		t := l.UpdatedAt
		updatedAt = &t
	}

	return &entity.LeadRecord{
		Id:        l.Id,
		UserId:    l.UserId,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		Source:    l.Source,
		Status:    entity.LeadStatus(l.Status),
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: l.DeletedAt.Valid,
	}
}

func (m *LeadMapper) ToModel(l *entity.LeadRecord) *model.LeadRecord {
	if l == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if l.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *l.DeletedAt, Valid: true}
	} else if l.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if l.UpdatedAt != nil {
		updatedAt = *l.UpdatedAt
	}

	return &model.LeadRecord{
		Id:        l.Id,
		UserId:    l.UserId,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		Source:    l.Source,
		Status:    string(l.Status),
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *LeadMapper) ToEntities(leads []*model.LeadRecord) []*entity.LeadRecord {
	entities := make([]*entity.LeadRecord, len(leads))
	for i, l := range leads {
		entities[i] = m.ToEntity(l)
	}
	return entities
}
