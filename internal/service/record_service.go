// FILE: internal/service/record_service.go
package service

import (
	"context"

	"emily-marketing-be/internal/dto"
	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/repository/specification"
	"emily-marketing-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IRecordService is the read surface over materialized content and lead
// records. Mutation happens through the conversation batch actions.
type IRecordService interface {
	ListContent(ctx context.Context, userId uuid.UUID, status string, limit, offset int) ([]dto.ContentRecordResponse, int64, error)
	ListLeads(ctx context.Context, userId uuid.UUID, status string, limit, offset int) ([]dto.LeadRecordResponse, int64, error)
}

type recordService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewRecordService(uowFactory unitofwork.RepositoryFactory) IRecordService {
	return &recordService{uowFactory: uowFactory}
}

func (s *recordService) ListContent(ctx context.Context, userId uuid.UUID, status string, limit, offset int) ([]dto.ContentRecordResponse, int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}

	total, err := uow.ContentRepository().Count(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}

	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	records, err := uow.ContentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.ContentRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toContentResponse(r))
	}
	return out, total, nil
}

func (s *recordService) ListLeads(ctx context.Context, userId uuid.UUID, status string, limit, offset int) ([]dto.LeadRecordResponse, int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}

	total, err := uow.LeadRepository().Count(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}

	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	leads, err := uow.LeadRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.LeadRecordResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLeadResponse(l))
	}
	return out, total, nil
}

func toContentResponse(r *entity.ContentRecord) dto.ContentRecordResponse {
	res := dto.ContentRecordResponse{
		Id:           r.Id,
		Caption:      r.Caption,
		Platform:     r.Platform,
		Hashtags:     r.Hashtags,
		MediaUrls:    r.MediaUrls,
		Status:       string(r.Status),
		ScheduledFor: r.ScheduledFor,
		PublishedAt:  r.PublishedAt,
		CreatedAt:    r.CreatedAt,
	}
	if r.Permalink != nil {
		res.Permalink = *r.Permalink
	}
	return res
}

func toLeadResponse(l *entity.LeadRecord) dto.LeadRecordResponse {
	return dto.LeadRecordResponse{
		Id:        l.Id,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Source:    l.Source,
		Status:    string(l.Status),
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
	}
}
