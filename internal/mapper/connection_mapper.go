package mapper

import (
	"time"

	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/model"
)

type ConnectionMapper struct{}

func NewConnectionMapper() *ConnectionMapper {
	return &ConnectionMapper{}
}

func (m *ConnectionMapper) ToEntity(c *model.PlatformConnection) *entity.PlatformConnection {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.PlatformConnection{
		Id:           c.Id,
		UserId:       c.UserId,
		Platform:     c.Platform,
		AccountName:  c.AccountName,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		ExpiresAt:    c.ExpiresAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ConnectionMapper) ToModel(c *entity.PlatformConnection) *model.PlatformConnection {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.PlatformConnection{
		Id:           c.Id,
		UserId:       c.UserId,
		Platform:     c.Platform,
		AccountName:  c.AccountName,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		ExpiresAt:    c.ExpiresAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ConnectionMapper) ToEntities(conns []*model.PlatformConnection) []*entity.PlatformConnection {
	entities := make([]*entity.PlatformConnection, len(conns))
	for i, c := range conns {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
