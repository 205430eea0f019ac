package contract

import (
	"context"

	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *entity.LeadRecord) error
	Update(ctx context.Context, lead *entity.LeadRecord) error
	// DeleteOwned removes a lead only when it is owned by userId.
	DeleteOwned(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LeadRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LeadRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
