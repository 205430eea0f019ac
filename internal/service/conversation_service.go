// FILE: internal/service/conversation_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"emily-marketing-be/internal/constant"
	"emily-marketing-be/internal/dto"
	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/pkg/logger"
	"emily-marketing-be/internal/repository/memory"
	"emily-marketing-be/internal/repository/specification"
	"emily-marketing-be/internal/repository/unitofwork"
	"emily-marketing-be/pkg/assistant"
	"emily-marketing-be/pkg/connect"
	"emily-marketing-be/pkg/conversation"
	"emily-marketing-be/pkg/conversation/selection"
	"emily-marketing-be/pkg/conversation/state"
	"emily-marketing-be/pkg/events"
	pktNats "emily-marketing-be/pkg/nats"
	"emily-marketing-be/pkg/social"
	"emily-marketing-be/pkg/store"

	"github.com/google/uuid"
)

var (
	ErrNoActiveClarification = errors.New("no clarification is awaiting a choice")
	ErrNothingSelected       = errors.New("nothing is selected")
	ErrActionNotAllowed      = errors.New("action is not allowed for the current selection")
	ErrUnknownOption         = errors.New("value is not one of the offered options")
)

// AssistantClient is the slice of the gateway client the conversation
// service needs. Tests substitute a fake.
type AssistantClient interface {
	Chat(ctx context.Context, request *assistant.ChatRequest) (*assistant.AgentReply, error)
	Reset(ctx context.Context)
}

// SchedulePublisher hands scheduled content to the publish pipeline.
type SchedulePublisher interface {
	EmitScheduled(userId, recordId uuid.UUID, at time.Time) error
}

type IConversationService interface {
	GetConversation(ctx context.Context, userId uuid.UUID) (*dto.ConversationResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.ConversationResponse, error)
	SelectClarificationOption(ctx context.Context, userId uuid.UUID, req *dto.SelectOptionRequest) (*dto.ConversationResponse, error)
	ConfirmDates(ctx context.Context, userId uuid.UUID, req *dto.DateRangeRequest) (*dto.ConversationResponse, error)
	ToggleContentSelection(ctx context.Context, userId uuid.UUID, req *dto.ToggleContentSelectionRequest) (*dto.ConversationResponse, error)
	ToggleLeadSelection(ctx context.Context, userId uuid.UUID, req *dto.ToggleLeadSelectionRequest) (*dto.ConversationResponse, error)
	PublishSelected(ctx context.Context, userId uuid.UUID) (*dto.BatchActionResponse, error)
	DeleteSelected(ctx context.Context, userId uuid.UUID) (*dto.BatchActionResponse, error)
	ScheduleSelected(ctx context.Context, userId uuid.UUID, req *dto.ScheduleSelectedRequest) (*dto.BatchActionResponse, error)
	SaveSelectedDraft(ctx context.Context, userId uuid.UUID) (*dto.BatchActionResponse, error)
	ResetConversation(ctx context.Context, userId uuid.UUID) (*dto.ConversationResponse, error)
	ResumeAfterConnect(ctx context.Context, userId uuid.UUID, platform string, connectErr error)
}

type conversationService struct {
	uowFactory     unitofwork.RepositoryFactory
	convRepo       *memory.ConversationRepository
	assistant      AssistantClient
	publisher      social.Publisher
	scheduler      SchedulePublisher
	eventPublisher *pktNats.Publisher
	machine        *state.Machine
	factory        *conversation.Factory
	logger         logger.ILogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	convRepo *memory.ConversationRepository,
	assistantClient AssistantClient,
	publisher social.Publisher,
	scheduler SchedulePublisher,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory:     uowFactory,
		convRepo:       convRepo,
		assistant:      assistantClient,
		publisher:      publisher,
		scheduler:      scheduler,
		eventPublisher: eventPublisher,
		machine:        state.NewMachine(log),
		factory:        conversation.NewFactory(),
		logger:         log,
		locks:          make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-user conversation lock. All mutation of a
// conversation happens under it.
func (s *conversationService) lockFor(userId string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[userId]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[userId] = l
	return l
}

func (s *conversationService) getOrCreate(userId uuid.UUID) *store.Conversation {
	key := userId.String()
	if conv, ok := s.convRepo.Get(key); ok {
		return conv
	}

	conv := &store.Conversation{
		ID:              uuid.New().String(),
		UserID:          key,
		Phase:           store.PhaseIdle,
		ContentIndex:    make(map[uuid.UUID]*store.ContentItem),
		LeadIndex:       make(map[uuid.UUID]*store.LeadItem),
		ConnectInFlight: make(map[string]bool),
	}
	welcome := s.factory.CreateNoticeTurn(constant.WelcomeMessage, time.Now())
	welcome.AgentName = constant.DefaultAgentName
	conv.Turns = append(conv.Turns, welcome)
	s.convRepo.Save(conv)
	return conv
}

func (s *conversationService) GetConversation(ctx context.Context, userId uuid.UUID) (*dto.ConversationResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	return s.toResponse(conv, nil), nil
}

func (s *conversationService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.ConversationResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	return s.send(ctx, userId, conv, req.Message, req.MediaUrls)
}

// send runs one full exchange: optimistic user turn, gateway call, bot (or
// error) turn. Gateway failures surface as an inline error turn, never as
// a request error. The caller must hold the conversation lock; send drops
// it for the gateway round-trip so a concurrent send observes SENDING and
// fails with ErrBusy instead of queueing behind the lock.
func (s *conversationService) send(ctx context.Context, userId uuid.UUID, conv *store.Conversation, text string, mediaUrls []string) (*dto.ConversationResponse, error) {
	if err := s.machine.BeginSend(conv); err != nil {
		return nil, err
	}

	history := conversation.History(conv)
	userTurn := s.factory.CreateUserTurn(text, time.Now())
	conv.Turns = append(conv.Turns, userTurn)
	s.convRepo.Save(conv)

	lock := s.lockFor(userId.String())
	lock.Unlock()
	reply, err := s.assistant.Chat(ctx, &assistant.ChatRequest{
		Message:             text,
		ConversationHistory: history,
		MediaUrls:           mediaUrls,
	})
	lock.Lock()
	if err != nil {
		s.logger.Warn("Conversation", "Gateway call failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		errTurn := s.factory.CreateErrorTurn("Sorry, something went wrong reaching the assistant. Please try again.", time.Now())
		conv.Turns = append(conv.Turns, errTurn)
		s.machine.FinishSend(conv, false, nil)
		s.convRepo.Save(conv)
		return s.toResponse(conv, nil), nil
	}

	botTurn := s.factory.CreateBotTurn(reply, time.Now())
	conv.Turns = append(conv.Turns, botTurn)
	s.factory.IndexTurn(conv, botTurn)

	s.persistNewRecords(ctx, userId, reply)

	var directives []dto.DirectiveDTO

	if reply.WaitingForUpload || reply.Intent == assistant.IntentUploadRequest {
		directives = append(directives, dto.DirectiveDTO{
			Type:    dto.DirectiveOpenUpload,
			DelayMs: constant.UploadDirectiveDelay.Milliseconds(),
		})
	}

	if reply.NeedsConnection {
		conv.PendingRetry = &store.ConnectionRetry{
			Platform:       reply.ConnectionPlatform,
			PendingMessage: text,
		}
		directives = append(directives, dto.DirectiveDTO{
			Type:     dto.DirectiveConnectRequired,
			Platform: reply.ConnectionPlatform,
		})
	}

	var clarification *store.Clarification
	if reply.WaitingForUser {
		clarification = &store.Clarification{
			Options:  botTurn.ClarificationOptions,
			DataType: reply.ClarificationData,
		}
	}
	s.machine.FinishSend(conv, reply.WaitingForUser, clarification)
	s.convRepo.Save(conv)

	return s.toResponse(conv, directives), nil
}

// persistNewRecords materializes reply items as owned records and emits a
// record.created event for each new one. Errors are logged, not fatal: the
// conversation turn already carries the items.
func (s *conversationService) persistNewRecords(ctx context.Context, userId uuid.UUID, reply *assistant.AgentReply) {
	if len(reply.ContentItems) == 0 && len(reply.LeadItems) == 0 {
		return
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	for _, item := range reply.ContentItems {
		existing, err := uow.ContentRepository().FindOne(ctx, specification.ByID{ID: item.Id})
		if err != nil || existing != nil {
			continue
		}
		status := entity.ContentStatus(item.Status)
		if status == "" {
			status = entity.ContentStatusDraft
		}
		record := &entity.ContentRecord{
			Id:        item.Id,
			UserId:    userId,
			Caption:   item.Caption,
			Hashtags:  item.Hashtags,
			MediaUrls: item.MediaUrls,
			Platform:  item.Platform,
			Status:    status,
			CreatedAt: time.Now(),
		}
		if err := uow.ContentRepository().Create(ctx, record); err != nil {
			s.logger.Error("Conversation", "Persist content record failed", map[string]interface{}{
				"record_id": item.Id.String(),
				"error":     err.Error(),
			})
			continue
		}
		s.publishRecordCreated(ctx, userId, record.Id, events.RecordTypeContent)
	}

	for _, item := range reply.LeadItems {
		existing, err := uow.LeadRepository().FindOne(ctx, specification.ByID{ID: item.Id})
		if err != nil || existing != nil {
			continue
		}
		status := entity.LeadStatus(item.Status)
		if status == "" {
			status = entity.LeadStatusNew
		}
		lead := &entity.LeadRecord{
			Id:        item.Id,
			UserId:    userId,
			Name:      item.Name,
			Email:     item.Email,
			Phone:     item.Phone,
			Company:   item.Company,
			Status:    status,
			CreatedAt: time.Now(),
		}
		if err := uow.LeadRepository().Create(ctx, lead); err != nil {
			s.logger.Error("Conversation", "Persist lead record failed", map[string]interface{}{
				"record_id": item.Id.String(),
				"error":     err.Error(),
			})
			continue
		}
		s.publishRecordCreated(ctx, userId, lead.Id, events.RecordTypeLead)
	}
}

func (s *conversationService) publishRecordCreated(ctx context.Context, userId, recordId uuid.UUID, recordType string) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewRecordCreatedEvent(userId, recordId, recordType)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Conversation", "Record event publish failed", map[string]interface{}{
			"record_id": recordId.String(),
			"error":     err.Error(),
		})
	}
}

func (s *conversationService) SelectClarificationOption(ctx context.Context, userId uuid.UUID, req *dto.SelectOptionRequest) (*dto.ConversationResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	if conv.Phase != store.PhaseAwaitingClarification || conv.Clarification == nil {
		return nil, ErrNoActiveClarification
	}

	// Reserved option values open a client widget. The clarification stays
	// active until a real value comes back through it.
	switch req.Value {
	case constant.ClarificationDatePicker:
		return s.toResponse(conv, []dto.DirectiveDTO{{Type: dto.DirectiveOpenDatePicker}}), nil
	case constant.ClarificationUpload:
		return s.toResponse(conv, []dto.DirectiveDTO{{
			Type:    dto.DirectiveOpenUpload,
			DelayMs: constant.UploadDirectiveDelay.Milliseconds(),
		}}), nil
	}

	if !s.offeredOption(conv, req.Value) {
		return nil, ErrUnknownOption
	}

	return s.send(ctx, userId, conv, req.Value, nil)
}

func (s *conversationService) offeredOption(conv *store.Conversation, value string) bool {
	for _, opt := range conv.Clarification.Options {
		if opt.Value == value {
			return true
		}
	}
	// Free-text answers are allowed when the assistant offered no options.
	return len(conv.Clarification.Options) == 0
}

func (s *conversationService) ConfirmDates(ctx context.Context, userId uuid.UUID, req *dto.DateRangeRequest) (*dto.ConversationResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	text, err := conversation.FormatDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	conv := s.getOrCreate(userId)
	return s.send(ctx, userId, conv, text, nil)
}

func (s *conversationService) ToggleContentSelection(ctx context.Context, userId uuid.UUID, req *dto.ToggleContentSelectionRequest) (*dto.ConversationResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	if _, ok := conv.ContentIndex[req.ContentId]; !ok {
		return nil, fmt.Errorf("unknown content item %s", req.ContentId)
	}

	// Selecting content drops any lead selection. The two domains never mix.
	if conv.SelectionDomain == store.DomainLeads {
		conv.Selected = nil
	}
	conv.SelectionDomain = store.DomainContent
	conv.Selected = selection.Toggle(conv.Selected, req.ContentId, req.Intent)
	if len(conv.Selected) == 0 {
		conv.SelectionDomain = ""
	}
	s.convRepo.Save(conv)
	return s.toResponse(conv, nil), nil
}

func (s *conversationService) ToggleLeadSelection(ctx context.Context, userId uuid.UUID, req *dto.ToggleLeadSelectionRequest) (*dto.ConversationResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	if _, ok := conv.LeadIndex[req.LeadId]; !ok {
		return nil, fmt.Errorf("unknown lead item %s", req.LeadId)
	}

	if conv.SelectionDomain == store.DomainContent {
		conv.Selected = nil
	}
	conv.SelectionDomain = store.DomainLeads
	conv.Selected = selection.Toggle(conv.Selected, req.LeadId, "")
	if len(conv.Selected) == 0 {
		conv.SelectionDomain = ""
	}
	s.convRepo.Save(conv)
	return s.toResponse(conv, nil), nil
}

func (s *conversationService) PublishSelected(ctx context.Context, userId uuid.UUID) (*dto.BatchActionResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	if !selection.CanPublish(conv) {
		return nil, ErrActionNotAllowed
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	res := &dto.BatchActionResponse{}

	for _, id := range append([]uuid.UUID(nil), conv.Selected...) {
		item := conv.ContentIndex[id]
		if item.Status == "published" {
			warn := s.factory.CreateNoticeTurn(fmt.Sprintf("Skipped %q: already published.", item.Caption), time.Now())
			conv.Turns = append(conv.Turns, warn)
			res.Failed = append(res.Failed, dto.FailedItemDTO{Id: id, Reason: "already published"})
			continue
		}

		record, err := uow.ContentRepository().FindOne(ctx,
			specification.ByID{ID: id},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil || record == nil {
			res.Failed = append(res.Failed, dto.FailedItemDTO{Id: id, Reason: "record not found"})
			continue
		}

		conn, err := uow.ConnectionRepository().FindOne(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.ByPlatform{Platform: record.Platform},
		)
		if err != nil {
			res.Failed = append(res.Failed, dto.FailedItemDTO{Id: id, Reason: "connection lookup failed"})
			continue
		}
		if conn == nil || conn.Expired(time.Now()) {
			return s.connectionRequired(conv, record.Platform, res), nil
		}

		result, err := s.publisher.Publish(ctx, conn, record)
		if err != nil {
			var connErr *social.ConnectionRequiredError
			if errors.As(err, &connErr) {
				return s.connectionRequired(conv, connErr.Platform, res), nil
			}
			s.logger.Error("Conversation", "Publish failed", map[string]interface{}{
				"record_id": id.String(),
				"error":     err.Error(),
			})
			res.Failed = append(res.Failed, dto.FailedItemDTO{Id: id, Reason: err.Error()})
			continue
		}

		now := time.Now()
		record.Status = entity.ContentStatusPublished
		record.PublishedAt = &now
		record.ExternalId = &result.ExternalId
		record.Permalink = &result.Permalink
		if err := uow.ContentRepository().Update(ctx, record); err != nil {
			s.logger.Error("Conversation", "Publish status update failed", map[string]interface{}{
				"record_id": id.String(),
				"error":     err.Error(),
			})
		}

		item.Status = "published"
		conv.Selected = selection.Remove(conv.Selected, id)
		res.Succeeded = append(res.Succeeded, id)

		notice := s.factory.CreateNoticeTurn(fmt.Sprintf("Published to %s.", record.Platform), time.Now())
		conv.Turns = append(conv.Turns, notice)
	}

	if len(conv.Selected) == 0 {
		conv.SelectionDomain = ""
	}
	s.convRepo.Save(conv)
	res.Turns = s.toTurnDTOs(conv.Turns)
	return res, nil
}

// connectionRequired records the one-shot retry and tells the client to
// start the OAuth flow.
func (s *conversationService) connectionRequired(conv *store.Conversation, platform string, res *dto.BatchActionResponse) *dto.BatchActionResponse {
	conv.PendingRetry = &store.ConnectionRetry{
		Platform:       platform,
		PendingMessage: conv.LastUserText(),
	}
	notice := s.factory.CreateNoticeTurn(fmt.Sprintf("You need to connect your %s account first.", platform), time.Now())
	notice.NeedsConnection = true
	notice.ConnectionPlatform = platform
	conv.Turns = append(conv.Turns, notice)
	s.convRepo.Save(conv)

	res.Directives = append(res.Directives, dto.DirectiveDTO{
		Type:     dto.DirectiveConnectRequired,
		Platform: platform,
	})
	res.Turns = s.toTurnDTOs(conv.Turns)
	return res
}

func (s *conversationService) DeleteSelected(ctx context.Context, userId uuid.UUID) (*dto.BatchActionResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	if !selection.CanDelete(conv) {
		return nil, ErrNothingSelected
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	res := &dto.BatchActionResponse{}

	for _, id := range append([]uuid.UUID(nil), conv.Selected...) {
		var err error
		if conv.SelectionDomain == store.DomainLeads {
			err = uow.LeadRepository().DeleteOwned(ctx, userId, id)
		} else {
			err = uow.ContentRepository().DeleteOwned(ctx, userId, id)
		}
		if err != nil {
			// Partial failure: the rest of the batch still proceeds.
			s.logger.Warn("Conversation", "Delete failed", map[string]interface{}{
				"record_id": id.String(),
				"error":     err.Error(),
			})
			res.Failed = append(res.Failed, dto.FailedItemDTO{Id: id, Reason: err.Error()})
			continue
		}
		delete(conv.ContentIndex, id)
		delete(conv.LeadIndex, id)
		conv.Selected = selection.Remove(conv.Selected, id)
		res.Succeeded = append(res.Succeeded, id)
	}

	notice := s.factory.CreateNoticeTurn(fmt.Sprintf("Deleted %d item(s).", len(res.Succeeded)), time.Now())
	conv.Turns = append(conv.Turns, notice)

	if len(conv.Selected) == 0 {
		conv.SelectionDomain = ""
	}
	s.convRepo.Save(conv)
	res.Turns = s.toTurnDTOs(conv.Turns)
	return res, nil
}

func (s *conversationService) ScheduleSelected(ctx context.Context, userId uuid.UUID, req *dto.ScheduleSelectedRequest) (*dto.BatchActionResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	if !selection.CanSchedule(conv) {
		return nil, ErrActionNotAllowed
	}

	if _, err := conversation.FormatDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	at, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", req.StartDate, err)
	}

	id := conv.Selected[0]
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.ContentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("content record %s not found", id)
	}

	record.Status = entity.ContentStatusScheduled
	record.ScheduledFor = &at
	if err := uow.ContentRepository().Update(ctx, record); err != nil {
		return nil, err
	}

	if s.scheduler != nil {
		if err := s.scheduler.EmitScheduled(userId, id, at); err != nil {
			s.logger.Warn("Conversation", "Schedule emit failed", map[string]interface{}{
				"record_id": id.String(),
				"error":     err.Error(),
			})
		}
	}

	if item, ok := conv.ContentIndex[id]; ok {
		item.Status = "scheduled"
	}
	conv.Selected = nil
	conv.SelectionDomain = ""

	notice := s.factory.CreateNoticeTurn(fmt.Sprintf("Scheduled for %s.", req.StartDate), time.Now())
	conv.Turns = append(conv.Turns, notice)
	s.convRepo.Save(conv)

	return &dto.BatchActionResponse{
		Succeeded: []uuid.UUID{id},
		Turns:     s.toTurnDTOs(conv.Turns),
	}, nil
}

func (s *conversationService) SaveSelectedDraft(ctx context.Context, userId uuid.UUID) (*dto.BatchActionResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	if !selection.CanSaveDraft(conv) {
		return nil, ErrActionNotAllowed
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	res := &dto.BatchActionResponse{}

	for _, id := range append([]uuid.UUID(nil), conv.Selected...) {
		record, err := uow.ContentRepository().FindOne(ctx,
			specification.ByID{ID: id},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil || record == nil {
			res.Failed = append(res.Failed, dto.FailedItemDTO{Id: id, Reason: "record not found"})
			continue
		}
		record.Status = entity.ContentStatusDraft
		record.ScheduledFor = nil
		if err := uow.ContentRepository().Update(ctx, record); err != nil {
			res.Failed = append(res.Failed, dto.FailedItemDTO{Id: id, Reason: err.Error()})
			continue
		}
		if item, ok := conv.ContentIndex[id]; ok {
			item.Status = "draft"
		}
		conv.Selected = selection.Remove(conv.Selected, id)
		res.Succeeded = append(res.Succeeded, id)
	}

	notice := s.factory.CreateNoticeTurn(fmt.Sprintf("Saved %d draft(s).", len(res.Succeeded)), time.Now())
	conv.Turns = append(conv.Turns, notice)

	if len(conv.Selected) == 0 {
		conv.SelectionDomain = ""
	}
	s.convRepo.Save(conv)
	res.Turns = s.toTurnDTOs(conv.Turns)
	return res, nil
}

func (s *conversationService) ResetConversation(ctx context.Context, userId uuid.UUID) (*dto.ConversationResponse, error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)

	// Best effort: the gateway reset never blocks a local reset.
	s.assistant.Reset(ctx)

	s.machine.Reset(conv)
	welcome := s.factory.CreateNoticeTurn(constant.WelcomeMessage, time.Now())
	welcome.AgentName = constant.DefaultAgentName
	conv.Turns = append(conv.Turns, welcome)
	s.convRepo.Save(conv)

	return s.toResponse(conv, nil), nil
}

// ResumeAfterConnect settles the pending retry once an OAuth attempt for
// the platform finishes. The retry fires at most once per attempt: it is
// cleared before any replay.
func (s *conversationService) ResumeAfterConnect(ctx context.Context, userId uuid.UUID, platform string, connectErr error) {
	lock := s.lockFor(userId.String())
	lock.Lock()
	defer lock.Unlock()

	conv := s.getOrCreate(userId)
	retry := conv.PendingRetry
	if retry == nil || retry.Platform != platform {
		return
	}
	conv.PendingRetry = nil
	s.convRepo.Save(conv)

	if connectErr != nil && !errors.Is(connectErr, connect.ErrCancelled) {
		errTurn := s.factory.CreateErrorTurn(fmt.Sprintf("Connecting your %s account failed. Please try again.", platform), time.Now())
		conv.Turns = append(conv.Turns, errTurn)
		s.convRepo.Save(conv)
		return
	}

	if connectErr == nil {
		notice := s.factory.CreateNoticeTurn(fmt.Sprintf("Your %s account is connected.", platform), time.Now())
		conv.Turns = append(conv.Turns, notice)
	}

	// A cancelled popup still replays once: the user may have finished the
	// grant in another tab before closing it.
	if retry.PendingMessage != "" {
		if _, err := s.send(ctx, userId, conv, retry.PendingMessage, nil); err != nil {
			s.logger.Warn("Conversation", "Replay after connect failed", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
		}
		return
	}
	s.convRepo.Save(conv)
}

func (s *conversationService) toResponse(conv *store.Conversation, directives []dto.DirectiveDTO) *dto.ConversationResponse {
	convId, _ := uuid.Parse(conv.ID)
	return &dto.ConversationResponse{
		ConversationId: convId,
		Phase:          conv.Phase,
		Turns:          s.toTurnDTOs(conv.Turns),
		Directives:     directives,
		Selection: dto.SelectionDTO{
			Domain: conv.SelectionDomain,
			Ids:    append([]uuid.UUID(nil), conv.Selected...),
		},
	}
}

func (s *conversationService) toTurnDTOs(turns []store.Turn) []dto.TurnDTO {
	out := make([]dto.TurnDTO, 0, len(turns))
	for _, t := range turns {
		d := dto.TurnDTO{
			Id:             t.Id,
			Sender:         t.Sender,
			Text:           t.Text,
			Timestamp:      t.Timestamp,
			Intent:         t.Intent,
			AgentName:      t.AgentName,
			WaitingForUser: t.WaitingForUser,
			IsError:        t.IsError,
		}
		for _, item := range t.ContentItems {
			d.ContentItems = append(d.ContentItems, dto.ContentItemDTO{
				Id:        item.Id,
				Caption:   item.Caption,
				Hashtags:  item.Hashtags,
				MediaUrls: item.MediaUrls,
				Platform:  item.Platform,
				Status:    item.Status,
			})
		}
		for _, item := range t.LeadItems {
			d.LeadItems = append(d.LeadItems, dto.LeadItemDTO{
				Id:      item.Id,
				Name:    item.Name,
				Email:   item.Email,
				Phone:   item.Phone,
				Company: item.Company,
				Status:  item.Status,
			})
		}
		for _, opt := range t.ClarificationOptions {
			d.ClarificationOptions = append(d.ClarificationOptions, dto.ClarificationOptionDTO{
				Value:       opt.Value,
				Label:       opt.Label,
				Description: opt.Description,
			})
		}
		out = append(out, d)
	}
	return out
}
