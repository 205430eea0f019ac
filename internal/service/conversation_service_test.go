// FILE: internal/service/conversation_service_test.go
package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emily-marketing-be/internal/constant"
	"emily-marketing-be/internal/dto"
	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/pkg/logger"
	"emily-marketing-be/internal/repository/contract"
	"emily-marketing-be/internal/repository/memory"
	"emily-marketing-be/internal/repository/specification"
	"emily-marketing-be/internal/repository/unitofwork"
	"emily-marketing-be/pkg/assistant"
	"emily-marketing-be/pkg/connect"
	"emily-marketing-be/pkg/conversation/state"
	"emily-marketing-be/pkg/social"
	"emily-marketing-be/pkg/store"
)

// ---- fakes ----

type fakeAssistant struct {
	mu      sync.Mutex
	replies []*assistant.AgentReply
	err     error
	calls   []*assistant.ChatRequest
	resets  int

	// When set, Chat blocks until the channel is closed. Lets tests hold a
	// send in flight.
	block chan struct{}
}

func (f *fakeAssistant) Chat(ctx context.Context, req *assistant.ChatRequest) (*assistant.AgentReply, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	err := f.err
	var reply *assistant.AgentReply
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return &assistant.AgentReply{Response: "ok", Intent: assistant.IntentConversation}, nil
	}
	return reply, nil
}

func (f *fakeAssistant) Reset(ctx context.Context) { f.resets++ }

func (f *fakeAssistant) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeContentRepo struct {
	records   map[uuid.UUID]*entity.ContentRecord
	deleteErr map[uuid.UUID]error
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{
		records:   make(map[uuid.UUID]*entity.ContentRecord),
		deleteErr: make(map[uuid.UUID]error),
	}
}

func matchContent(r *entity.ContentRecord, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if r.Id != sp.ID {
				return false
			}
		case specification.UserOwnedBy:
			if r.UserId != sp.UserID {
				return false
			}
		case specification.ByStatus:
			if string(r.Status) != sp.Status {
				return false
			}
		}
	}
	return true
}

func (f *fakeContentRepo) Create(ctx context.Context, record *entity.ContentRecord) error {
	f.records[record.Id] = record
	return nil
}

func (f *fakeContentRepo) Update(ctx context.Context, record *entity.ContentRecord) error {
	f.records[record.Id] = record
	return nil
}

func (f *fakeContentRepo) DeleteOwned(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if err, ok := f.deleteErr[id]; ok {
		return err
	}
	delete(f.records, id)
	return nil
}

func (f *fakeContentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentRecord, error) {
	for _, r := range f.records {
		if matchContent(r, specs) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeContentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentRecord, error) {
	var out []*entity.ContentRecord
	for _, r := range f.records {
		if matchContent(r, specs) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := f.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeLeadRepo struct {
	leads     map[uuid.UUID]*entity.LeadRecord
	deleteErr map[uuid.UUID]error
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{
		leads:     make(map[uuid.UUID]*entity.LeadRecord),
		deleteErr: make(map[uuid.UUID]error),
	}
}

func matchLead(l *entity.LeadRecord, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if l.Id != sp.ID {
				return false
			}
		case specification.UserOwnedBy:
			if l.UserId != sp.UserID {
				return false
			}
		}
	}
	return true
}

func (f *fakeLeadRepo) Create(ctx context.Context, lead *entity.LeadRecord) error {
	f.leads[lead.Id] = lead
	return nil
}

func (f *fakeLeadRepo) Update(ctx context.Context, lead *entity.LeadRecord) error {
	f.leads[lead.Id] = lead
	return nil
}

func (f *fakeLeadRepo) DeleteOwned(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if err, ok := f.deleteErr[id]; ok {
		return err
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeLeadRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LeadRecord, error) {
	for _, l := range f.leads {
		if matchLead(l, specs) {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeLeadRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LeadRecord, error) {
	var out []*entity.LeadRecord
	for _, l := range f.leads {
		if matchLead(l, specs) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeadRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := f.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeConnectionRepo struct {
	conns map[string]*entity.PlatformConnection // keyed userId:platform
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{conns: make(map[string]*entity.PlatformConnection)}
}

func (f *fakeConnectionRepo) Upsert(ctx context.Context, conn *entity.PlatformConnection) error {
	f.conns[conn.UserId.String()+":"+conn.Platform] = conn
	return nil
}

func (f *fakeConnectionRepo) Delete(ctx context.Context, userId uuid.UUID, platform string) error {
	delete(f.conns, userId.String()+":"+platform)
	return nil
}

func (f *fakeConnectionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PlatformConnection, error) {
	var userId uuid.UUID
	var platform string
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.UserOwnedBy:
			userId = sp.UserID
		case specification.ByPlatform:
			platform = sp.Platform
		}
	}
	if c, ok := f.conns[userId.String()+":"+platform]; ok {
		return c, nil
	}
	return nil, nil
}

func (f *fakeConnectionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PlatformConnection, error) {
	var out []*entity.PlatformConnection
	for _, c := range f.conns {
		out = append(out, c)
	}
	return out, nil
}

type fakeUnitOfWork struct {
	content *fakeContentRepo
	leads   *fakeLeadRepo
	conns   *fakeConnectionRepo
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error                   { return nil }
func (f *fakeUnitOfWork) Rollback() error                 { return nil }

func (f *fakeUnitOfWork) UserRepository() contract.UserRepository             { return nil }
func (f *fakeUnitOfWork) ContentRepository() contract.ContentRepository       { return f.content }
func (f *fakeUnitOfWork) LeadRepository() contract.LeadRepository             { return f.leads }
func (f *fakeUnitOfWork) ConnectionRepository() contract.ConnectionRepository { return f.conns }

type fakeRepoFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeRepoFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeSocialPublisher struct {
	err     error
	results []struct {
		platform string
		recordId uuid.UUID
	}
}

func (f *fakeSocialPublisher) Publish(ctx context.Context, conn *entity.PlatformConnection, record *entity.ContentRecord) (*social.PublishResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.results = append(f.results, struct {
		platform string
		recordId uuid.UUID
	}{record.Platform, record.Id})
	return &social.PublishResult{ExternalId: "ext-123", Permalink: "https://example.com/p/123"}, nil
}

type fakeScheduler struct {
	emitted []time.Time
}

func (f *fakeScheduler) EmitScheduled(userId, recordId uuid.UUID, at time.Time) error {
	f.emitted = append(f.emitted, at)
	return nil
}

type testHarness struct {
	svc       IConversationService
	gateway   *fakeAssistant
	uow       *fakeUnitOfWork
	publisher *fakeSocialPublisher
	scheduler *fakeScheduler
	convRepo  *memory.ConversationRepository
	userId    uuid.UUID
}

func newHarness() *testHarness {
	gateway := &fakeAssistant{}
	uow := &fakeUnitOfWork{
		content: newFakeContentRepo(),
		leads:   newFakeLeadRepo(),
		conns:   newFakeConnectionRepo(),
	}
	publisher := &fakeSocialPublisher{}
	scheduler := &fakeScheduler{}
	convRepo := memory.NewConversationRepository()

	svc := NewConversationService(
		&fakeRepoFactory{uow: uow},
		convRepo,
		gateway,
		publisher,
		scheduler,
		nil,
		logger.NewNopLogger(),
	)
	return &testHarness{
		svc:       svc,
		gateway:   gateway,
		uow:       uow,
		publisher: publisher,
		scheduler: scheduler,
		convRepo:  convRepo,
		userId:    uuid.New(),
	}
}

func (h *testHarness) conversation(t *testing.T) *store.Conversation {
	t.Helper()
	conv, ok := h.convRepo.Get(h.userId.String())
	require.True(t, ok, "conversation should exist")
	return conv
}

func contentReply(item assistant.ContentItem) *assistant.AgentReply {
	return &assistant.AgentReply{
		Response:     "Here is your post.",
		Intent:       assistant.IntentGenerateContent,
		AgentName:    "Emily",
		ContentItems: []assistant.ContentItem{item},
	}
}

// ---- tests ----

func TestGetConversationCreatesWelcomeTurn(t *testing.T) {
	h := newHarness()

	res, err := h.svc.GetConversation(context.Background(), h.userId)
	require.NoError(t, err)

	assert.Equal(t, store.PhaseIdle, res.Phase)
	require.Len(t, res.Turns, 1)
	assert.Equal(t, store.SenderBot, res.Turns[0].Sender)
	assert.Equal(t, constant.WelcomeMessage, res.Turns[0].Text)
	assert.Equal(t, constant.DefaultAgentName, res.Turns[0].AgentName)
}

func TestSendMessageAppendsTurnsInOrder(t *testing.T) {
	h := newHarness()
	h.gateway.replies = []*assistant.AgentReply{
		{Response: "Happy to help!", Intent: assistant.IntentConversation, AgentName: "Emily"},
	}

	res, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "hi"})
	require.NoError(t, err)

	require.Len(t, res.Turns, 3) // welcome, user, bot
	assert.Equal(t, store.SenderUser, res.Turns[1].Sender)
	assert.Equal(t, "hi", res.Turns[1].Text)
	assert.Equal(t, store.SenderBot, res.Turns[2].Sender)
	assert.Equal(t, "Happy to help!", res.Turns[2].Text)
	assert.Equal(t, store.PhaseIdle, res.Phase)

	// History sent to the gateway is the state before this user turn.
	require.Len(t, h.gateway.calls, 1)
	assert.Equal(t, []string{"bot: " + constant.WelcomeMessage}, h.gateway.calls[0].ConversationHistory)
}

func TestSendMessageWhileBusyIsRejected(t *testing.T) {
	h := newHarness()
	release := make(chan struct{})
	h.gateway.block = release

	firstDone := make(chan error, 1)
	go func() {
		_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "first"})
		firstDone <- err
	}()

	// Wait until the first send is inside the gateway call.
	require.Eventually(t, func() bool { return h.gateway.callCount() == 1 }, time.Second, 5*time.Millisecond)

	// The second send is a no-op, not queued behind the first.
	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "second"})
	assert.ErrorIs(t, err, state.ErrBusy)

	close(release)
	require.NoError(t, <-firstDone)

	// Only the first message ever reached the gateway, and only its user
	// turn was appended.
	assert.Equal(t, 1, h.gateway.callCount())
	var userTexts []string
	for _, turn := range h.conversation(t).Turns {
		if turn.Sender == store.SenderUser {
			userTexts = append(userTexts, turn.Text)
		}
	}
	assert.Equal(t, []string{"first"}, userTexts)
}

func TestSendMessageGatewayFailureYieldsErrorTurn(t *testing.T) {
	h := newHarness()
	h.gateway.err = errors.New("connection refused")

	res, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "hi"})
	require.NoError(t, err, "gateway failures surface as an inline turn, not an error")

	last := res.Turns[len(res.Turns)-1]
	assert.True(t, last.IsError)
	assert.Equal(t, store.PhaseIdle, res.Phase)

	// The conversation accepts the next send.
	h.gateway.err = nil
	_, err = h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "retry"})
	assert.NoError(t, err)
}

func TestClarificationFlow(t *testing.T) {
	h := newHarness()
	h.gateway.replies = []*assistant.AgentReply{
		{
			Response:       "Which platform?",
			Intent:         assistant.IntentClarify,
			WaitingForUser: true,
			ClarificationOptions: []assistant.ClarificationOption{
				{Value: "instagram", Label: "Instagram"},
				{Value: "facebook", Label: "Facebook"},
			},
		},
		{Response: "Posting to Instagram.", Intent: assistant.IntentConversation},
	}

	res, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "make a post"})
	require.NoError(t, err)
	assert.Equal(t, store.PhaseAwaitingClarification, res.Phase)

	// A value the assistant never offered is rejected.
	_, err = h.svc.SelectClarificationOption(context.Background(), h.userId, &dto.SelectOptionRequest{Value: "tiktok"})
	assert.ErrorIs(t, err, ErrUnknownOption)

	// A real option is sent through as the next user message.
	res, err = h.svc.SelectClarificationOption(context.Background(), h.userId, &dto.SelectOptionRequest{Value: "instagram"})
	require.NoError(t, err)
	assert.Equal(t, store.PhaseIdle, res.Phase)
	require.Len(t, h.gateway.calls, 2)
	assert.Equal(t, "instagram", h.gateway.calls[1].Message)
}

func TestClarificationReservedValuesOpenWidgets(t *testing.T) {
	h := newHarness()
	h.gateway.replies = []*assistant.AgentReply{
		{
			Response:          "When should it go out?",
			Intent:            assistant.IntentClarify,
			WaitingForUser:    true,
			ClarificationData: "date_picker",
		},
	}

	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "schedule it"})
	require.NoError(t, err)

	res, err := h.svc.SelectClarificationOption(context.Background(), h.userId, &dto.SelectOptionRequest{Value: constant.ClarificationDatePicker})
	require.NoError(t, err)
	require.Len(t, res.Directives, 1)
	assert.Equal(t, dto.DirectiveOpenDatePicker, res.Directives[0].Type)

	// The clarification stays active: no gateway call was made.
	assert.Equal(t, store.PhaseAwaitingClarification, res.Phase)
	assert.Len(t, h.gateway.calls, 1)

	res, err = h.svc.SelectClarificationOption(context.Background(), h.userId, &dto.SelectOptionRequest{Value: constant.ClarificationUpload})
	require.NoError(t, err)
	require.Len(t, res.Directives, 1)
	assert.Equal(t, dto.DirectiveOpenUpload, res.Directives[0].Type)
	assert.Equal(t, constant.UploadDirectiveDelay.Milliseconds(), res.Directives[0].DelayMs)
}

func TestSelectClarificationWithoutPrompt(t *testing.T) {
	h := newHarness()
	_, err := h.svc.GetConversation(context.Background(), h.userId)
	require.NoError(t, err)

	_, err = h.svc.SelectClarificationOption(context.Background(), h.userId, &dto.SelectOptionRequest{Value: "anything"})
	assert.ErrorIs(t, err, ErrNoActiveClarification)
}

func TestConfirmDatesValidatesLocally(t *testing.T) {
	h := newHarness()

	_, err := h.svc.ConfirmDates(context.Background(), h.userId, &dto.DateRangeRequest{StartDate: ""})
	assert.Error(t, err)
	assert.Empty(t, h.gateway.calls, "no request should be made for an empty start date")

	_, err = h.svc.ConfirmDates(context.Background(), h.userId, &dto.DateRangeRequest{StartDate: "2026-09-15", EndDate: "2026-09-20"})
	require.NoError(t, err)
	require.Len(t, h.gateway.calls, 1)
	assert.Equal(t, "2026-09-15 to 2026-09-20", h.gateway.calls[0].Message)
}

func TestSelectionDomainsAreExclusive(t *testing.T) {
	h := newHarness()
	contentId := uuid.New()
	leadId := uuid.New()
	h.gateway.replies = []*assistant.AgentReply{
		{
			Response:     "Post and lead ready.",
			Intent:       assistant.IntentGenerateContent,
			ContentItems: []assistant.ContentItem{{Id: contentId, Caption: "caption", Platform: "instagram", Status: "draft"}},
			LeadItems:    []assistant.LeadItem{{Id: leadId, Name: "Ava", Status: "new"}},
		},
	}
	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "make stuff"})
	require.NoError(t, err)

	res, err := h.svc.ToggleContentSelection(context.Background(), h.userId, &dto.ToggleContentSelectionRequest{ContentId: contentId, Intent: "schedule_content"})
	require.NoError(t, err)
	assert.Equal(t, store.DomainContent, res.Selection.Domain)
	assert.Equal(t, []uuid.UUID{contentId}, res.Selection.Ids)

	// Selecting a lead drops the content selection entirely.
	res, err = h.svc.ToggleLeadSelection(context.Background(), h.userId, &dto.ToggleLeadSelectionRequest{LeadId: leadId})
	require.NoError(t, err)
	assert.Equal(t, store.DomainLeads, res.Selection.Domain)
	assert.Equal(t, []uuid.UUID{leadId}, res.Selection.Ids)

	// Untoggling the last member clears the domain too.
	res, err = h.svc.ToggleLeadSelection(context.Background(), h.userId, &dto.ToggleLeadSelectionRequest{LeadId: leadId})
	require.NoError(t, err)
	assert.Empty(t, res.Selection.Domain)
	assert.Empty(t, res.Selection.Ids)
}

func TestPublishSelectedSuccess(t *testing.T) {
	h := newHarness()
	contentId := uuid.New()
	h.gateway.replies = []*assistant.AgentReply{
		contentReply(assistant.ContentItem{Id: contentId, Caption: "caption", Platform: "instagram", Status: "draft"}),
	}
	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "make a post"})
	require.NoError(t, err)

	h.uow.conns.conns[h.userId.String()+":instagram"] = &entity.PlatformConnection{
		Id:          uuid.New(),
		UserId:      h.userId,
		Platform:    "instagram",
		AccessToken: "token",
	}

	_, err = h.svc.ToggleContentSelection(context.Background(), h.userId, &dto.ToggleContentSelectionRequest{ContentId: contentId, Intent: "publish_content"})
	require.NoError(t, err)

	res, err := h.svc.PublishSelected(context.Background(), h.userId)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{contentId}, res.Succeeded)
	assert.Empty(t, res.Failed)

	record := h.uow.content.records[contentId]
	require.NotNil(t, record)
	assert.Equal(t, entity.ContentStatusPublished, record.Status)
	require.NotNil(t, record.ExternalId)
	assert.Equal(t, "ext-123", *record.ExternalId)

	conv := h.conversation(t)
	assert.Equal(t, "published", conv.ContentIndex[contentId].Status)
	assert.Empty(t, conv.Selected)
}

func TestPublishSelectedWithoutConnection(t *testing.T) {
	h := newHarness()
	contentId := uuid.New()
	h.gateway.replies = []*assistant.AgentReply{
		contentReply(assistant.ContentItem{Id: contentId, Caption: "caption", Platform: "instagram", Status: "draft"}),
	}
	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "make a post"})
	require.NoError(t, err)

	_, err = h.svc.ToggleContentSelection(context.Background(), h.userId, &dto.ToggleContentSelectionRequest{ContentId: contentId, Intent: "publish_content"})
	require.NoError(t, err)

	res, err := h.svc.PublishSelected(context.Background(), h.userId)
	require.NoError(t, err)

	require.Len(t, res.Directives, 1)
	assert.Equal(t, dto.DirectiveConnectRequired, res.Directives[0].Type)
	assert.Equal(t, "instagram", res.Directives[0].Platform)

	conv := h.conversation(t)
	require.NotNil(t, conv.PendingRetry)
	assert.Equal(t, "instagram", conv.PendingRetry.Platform)
	assert.Equal(t, "make a post", conv.PendingRetry.PendingMessage)

	last := conv.Turns[len(conv.Turns)-1]
	assert.True(t, last.NeedsConnection)
}

func TestPublishSelectedRequiresContentSelection(t *testing.T) {
	h := newHarness()
	_, err := h.svc.GetConversation(context.Background(), h.userId)
	require.NoError(t, err)

	_, err = h.svc.PublishSelected(context.Background(), h.userId)
	assert.ErrorIs(t, err, ErrActionNotAllowed)
}

func TestResumeAfterConnectReplaysAtMostOnce(t *testing.T) {
	h := newHarness()
	contentId := uuid.New()
	h.gateway.replies = []*assistant.AgentReply{
		contentReply(assistant.ContentItem{Id: contentId, Caption: "caption", Platform: "instagram", Status: "draft"}),
	}
	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "make a post"})
	require.NoError(t, err)

	_, err = h.svc.ToggleContentSelection(context.Background(), h.userId, &dto.ToggleContentSelectionRequest{ContentId: contentId, Intent: "publish_content"})
	require.NoError(t, err)
	_, err = h.svc.PublishSelected(context.Background(), h.userId)
	require.NoError(t, err)
	require.NotNil(t, h.conversation(t).PendingRetry)

	callsBefore := len(h.gateway.calls)
	h.svc.ResumeAfterConnect(context.Background(), h.userId, "instagram", nil)

	conv := h.conversation(t)
	assert.Nil(t, conv.PendingRetry)
	assert.Len(t, h.gateway.calls, callsBefore+1, "the pending message is replayed once")
	assert.Equal(t, "make a post", h.gateway.calls[len(h.gateway.calls)-1].Message)

	// A second resolution is a no-op.
	h.svc.ResumeAfterConnect(context.Background(), h.userId, "instagram", nil)
	assert.Len(t, h.gateway.calls, callsBefore+1)
}

func TestResumeAfterConnectCancelStillReplays(t *testing.T) {
	h := newHarness()
	_, err := h.svc.GetConversation(context.Background(), h.userId)
	require.NoError(t, err)

	conv := h.conversation(t)
	conv.PendingRetry = &store.ConnectionRetry{Platform: "facebook", PendingMessage: "publish it"}

	h.svc.ResumeAfterConnect(context.Background(), h.userId, "facebook", connect.ErrCancelled)

	require.Len(t, h.gateway.calls, 1)
	assert.Equal(t, "publish it", h.gateway.calls[0].Message)
	assert.Nil(t, h.conversation(t).PendingRetry)
}

func TestResumeAfterConnectProviderErrorDiscards(t *testing.T) {
	h := newHarness()
	_, err := h.svc.GetConversation(context.Background(), h.userId)
	require.NoError(t, err)

	conv := h.conversation(t)
	conv.PendingRetry = &store.ConnectionRetry{Platform: "facebook", PendingMessage: "publish it"}

	h.svc.ResumeAfterConnect(context.Background(), h.userId, "facebook", errors.New("access_denied"))

	assert.Empty(t, h.gateway.calls, "a failed grant never replays")
	conv = h.conversation(t)
	assert.Nil(t, conv.PendingRetry)
	assert.True(t, conv.Turns[len(conv.Turns)-1].IsError)
}

func TestResumeAfterConnectIgnoresOtherPlatforms(t *testing.T) {
	h := newHarness()
	_, err := h.svc.GetConversation(context.Background(), h.userId)
	require.NoError(t, err)

	conv := h.conversation(t)
	conv.PendingRetry = &store.ConnectionRetry{Platform: "facebook", PendingMessage: "publish it"}

	h.svc.ResumeAfterConnect(context.Background(), h.userId, "linkedin", nil)

	assert.Empty(t, h.gateway.calls)
	assert.NotNil(t, h.conversation(t).PendingRetry)
}

func TestDeleteSelectedPartialFailure(t *testing.T) {
	h := newHarness()
	leadA := uuid.New()
	leadB := uuid.New()
	h.gateway.replies = []*assistant.AgentReply{
		{
			Response: "Found two leads.",
			Intent:   assistant.IntentManageLeads,
			LeadItems: []assistant.LeadItem{
				{Id: leadA, Name: "Ava", Status: "new"},
				{Id: leadB, Name: "Marcus", Status: "new"},
			},
		},
	}
	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "show my leads"})
	require.NoError(t, err)

	_, err = h.svc.ToggleLeadSelection(context.Background(), h.userId, &dto.ToggleLeadSelectionRequest{LeadId: leadA})
	require.NoError(t, err)
	_, err = h.svc.ToggleLeadSelection(context.Background(), h.userId, &dto.ToggleLeadSelectionRequest{LeadId: leadB})
	require.NoError(t, err)

	h.uow.leads.deleteErr[leadA] = errors.New("db down")

	res, err := h.svc.DeleteSelected(context.Background(), h.userId)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{leadB}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, leadA, res.Failed[0].Id)

	// The failed lead stays in the index for a retry.
	conv := h.conversation(t)
	assert.Contains(t, conv.LeadIndex, leadA)
	assert.NotContains(t, conv.LeadIndex, leadB)
}

func TestScheduleSelected(t *testing.T) {
	h := newHarness()
	contentId := uuid.New()
	h.gateway.replies = []*assistant.AgentReply{
		contentReply(assistant.ContentItem{Id: contentId, Caption: "caption", Platform: "instagram", Status: "draft"}),
	}
	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "make a post"})
	require.NoError(t, err)

	_, err = h.svc.ToggleContentSelection(context.Background(), h.userId, &dto.ToggleContentSelectionRequest{ContentId: contentId, Intent: "schedule_content"})
	require.NoError(t, err)

	res, err := h.svc.ScheduleSelected(context.Background(), h.userId, &dto.ScheduleSelectedRequest{StartDate: "2026-09-15"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{contentId}, res.Succeeded)

	record := h.uow.content.records[contentId]
	require.NotNil(t, record)
	assert.Equal(t, entity.ContentStatusScheduled, record.Status)
	require.NotNil(t, record.ScheduledFor)

	require.Len(t, h.scheduler.emitted, 1)
	assert.Equal(t, "2026-09-15", h.scheduler.emitted[0].Format("2006-01-02"))

	conv := h.conversation(t)
	assert.Empty(t, conv.Selected)
	assert.Equal(t, "scheduled", conv.ContentIndex[contentId].Status)
}

func TestSaveSelectedDraftClearsSchedule(t *testing.T) {
	h := newHarness()
	contentId := uuid.New()
	h.gateway.replies = []*assistant.AgentReply{
		contentReply(assistant.ContentItem{Id: contentId, Caption: "caption", Platform: "instagram", Status: "draft"}),
	}
	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "make a post"})
	require.NoError(t, err)

	_, err = h.svc.ToggleContentSelection(context.Background(), h.userId, &dto.ToggleContentSelectionRequest{ContentId: contentId, Intent: "schedule_content"})
	require.NoError(t, err)
	_, err = h.svc.ScheduleSelected(context.Background(), h.userId, &dto.ScheduleSelectedRequest{StartDate: "2026-09-15"})
	require.NoError(t, err)

	_, err = h.svc.ToggleContentSelection(context.Background(), h.userId, &dto.ToggleContentSelectionRequest{ContentId: contentId, Intent: "schedule_content"})
	require.NoError(t, err)
	res, err := h.svc.SaveSelectedDraft(context.Background(), h.userId)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{contentId}, res.Succeeded)

	record := h.uow.content.records[contentId]
	assert.Equal(t, entity.ContentStatusDraft, record.Status)
	assert.Nil(t, record.ScheduledFor)
}

func TestPersistNewRecordsEmitsOncePerRecord(t *testing.T) {
	h := newHarness()
	contentId := uuid.New()
	reply := contentReply(assistant.ContentItem{Id: contentId, Caption: "caption", Platform: "instagram", Status: "draft"})
	h.gateway.replies = []*assistant.AgentReply{reply, reply}

	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "make a post"})
	require.NoError(t, err)
	_, err = h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "show it again"})
	require.NoError(t, err)

	// The second reply referencing the same id does not duplicate the record.
	assert.Len(t, h.uow.content.records, 1)
}

func TestResetConversation(t *testing.T) {
	h := newHarness()
	h.gateway.replies = []*assistant.AgentReply{
		{Response: "hello", Intent: assistant.IntentConversation},
	}
	_, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "hi"})
	require.NoError(t, err)

	res, err := h.svc.ResetConversation(context.Background(), h.userId)
	require.NoError(t, err)

	assert.Equal(t, 1, h.gateway.resets)
	assert.Equal(t, store.PhaseIdle, res.Phase)
	require.Len(t, res.Turns, 1)
	assert.Equal(t, constant.WelcomeMessage, res.Turns[0].Text)
}

func TestUploadRequestEmitsDelayedDirective(t *testing.T) {
	h := newHarness()
	h.gateway.replies = []*assistant.AgentReply{
		{
			Response:         "Please upload an image.",
			Intent:           assistant.IntentUploadRequest,
			WaitingForUser:   true,
			WaitingForUpload: true,
			UploadType:       assistant.UploadTypeImage,
		},
	}

	res, err := h.svc.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{Message: "post my photo"})
	require.NoError(t, err)

	require.Len(t, res.Directives, 1)
	assert.Equal(t, dto.DirectiveOpenUpload, res.Directives[0].Type)
	assert.Equal(t, constant.UploadDirectiveDelay.Milliseconds(), res.Directives[0].DelayMs)
}
