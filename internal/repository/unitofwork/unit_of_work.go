package unitofwork

import (
	"context"

	"emily-marketing-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ContentRepository() contract.ContentRepository
	LeadRepository() contract.LeadRepository
	ConnectionRepository() contract.ConnectionRepository
}
