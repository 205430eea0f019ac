package mapper

import (
	"encoding/json"
	"time"

	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentMapper struct{}

func NewContentMapper() *ContentMapper {
	return &ContentMapper{}
}

func (m *ContentMapper) ToEntity(c *model.ContentRecord) *entity.ContentRecord {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.ContentRecord{
		Id:           c.Id,
		UserId:       c.UserId,
		Caption:      c.Caption,
		Hashtags:     jsonToStrings(c.Hashtags),
		MediaUrls:    jsonToStrings(c.MediaUrls),
		Platform:     c.Platform,
		Status:       entity.ContentStatus(c.Status),
		ScheduledFor: c.ScheduledFor,
		PublishedAt:  c.PublishedAt,
		ExternalId:   c.ExternalId,
		Permalink:    c.Permalink,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    c.DeletedAt.Valid,
	}
}

func (m *ContentMapper) ToModel(c *entity.ContentRecord) *model.ContentRecord {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.ContentRecord{
		Id:           c.Id,
		UserId:       c.UserId,
		Caption:      c.Caption,
		Hashtags:     stringsToJSON(c.Hashtags),
		MediaUrls:    stringsToJSON(c.MediaUrls),
		Platform:     c.Platform,
		Status:       string(c.Status),
		ScheduledFor: c.ScheduledFor,
		PublishedAt:  c.PublishedAt,
		ExternalId:   c.ExternalId,
		Permalink:    c.Permalink,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

func (m *ContentMapper) ToEntities(records []*model.ContentRecord) []*entity.ContentRecord {
	entities := make([]*entity.ContentRecord, len(records))
	for i, c := range records {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func jsonToStrings(data datatypes.JSON) []string {
	if len(data) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func stringsToJSON(values []string) datatypes.JSON {
	if len(values) == 0 {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
