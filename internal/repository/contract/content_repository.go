package contract

import (
	"context"

	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ContentRepository interface {
	Create(ctx context.Context, record *entity.ContentRecord) error
	Update(ctx context.Context, record *entity.ContentRecord) error
	// DeleteOwned removes a record only when it is owned by userId.
	// Returns gorm.ErrRecordNotFound when no owned row matches.
	DeleteOwned(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
