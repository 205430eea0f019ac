package contract

import (
	"context"

	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConnectionRepository interface {
	// Upsert creates or replaces the connection for the user+platform pair.
	Upsert(ctx context.Context, conn *entity.PlatformConnection) error
	Delete(ctx context.Context, userId uuid.UUID, platform string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PlatformConnection, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PlatformConnection, error)
}
