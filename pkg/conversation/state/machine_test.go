package state

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emily-marketing-be/internal/pkg/logger"
	"emily-marketing-be/pkg/store"
)

func newConversation() *store.Conversation {
	return &store.Conversation{
		ID:              uuid.New().String(),
		UserID:          uuid.New().String(),
		Phase:           store.PhaseIdle,
		ContentIndex:    make(map[uuid.UUID]*store.ContentItem),
		LeadIndex:       make(map[uuid.UUID]*store.LeadItem),
		ConnectInFlight: make(map[string]bool),
	}
}

func TestBeginSendGuardsConcurrentSends(t *testing.T) {
	m := NewMachine(logger.NewNopLogger())
	conv := newConversation()

	require.NoError(t, m.BeginSend(conv))
	assert.Equal(t, store.PhaseSending, conv.Phase)

	// A second send while the first is in flight is rejected.
	err := m.BeginSend(conv)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, store.PhaseSending, conv.Phase)
}

func TestBeginSendClearsActiveClarification(t *testing.T) {
	m := NewMachine(logger.NewNopLogger())
	conv := newConversation()
	conv.Phase = store.PhaseAwaitingClarification
	conv.Clarification = &store.Clarification{
		Options: []store.ClarificationOption{{Value: "instagram", Label: "Instagram"}},
	}

	require.NoError(t, m.BeginSend(conv))
	assert.Nil(t, conv.Clarification)
}

func TestFinishSendWaiting(t *testing.T) {
	m := NewMachine(logger.NewNopLogger())
	conv := newConversation()
	require.NoError(t, m.BeginSend(conv))

	clar := &store.Clarification{
		Options: []store.ClarificationOption{{Value: "facebook", Label: "Facebook"}},
	}
	m.FinishSend(conv, true, clar)

	assert.Equal(t, store.PhaseAwaitingClarification, conv.Phase)
	assert.Same(t, clar, conv.Clarification)
}

func TestFinishSendIdle(t *testing.T) {
	m := NewMachine(logger.NewNopLogger())
	conv := newConversation()
	require.NoError(t, m.BeginSend(conv))

	m.FinishSend(conv, false, nil)

	assert.Equal(t, store.PhaseIdle, conv.Phase)
	assert.Nil(t, conv.Clarification)

	// The conversation accepts a new send afterwards.
	assert.NoError(t, m.BeginSend(conv))
}

func TestResetDropsAllTransientState(t *testing.T) {
	m := NewMachine(logger.NewNopLogger())
	conv := newConversation()
	id := uuid.New()

	conv.Phase = store.PhaseAwaitingClarification
	conv.Turns = []store.Turn{{Id: uuid.New(), Sender: store.SenderUser, Text: "hello"}}
	conv.Clarification = &store.Clarification{}
	conv.SelectionDomain = store.DomainContent
	conv.Selected = []uuid.UUID{id}
	conv.PendingRetry = &store.ConnectionRetry{Platform: "instagram", PendingMessage: "post it"}
	conv.ContentIndex[id] = &store.ContentItem{Id: id}
	conv.ConnectInFlight["instagram"] = true

	m.Reset(conv)

	assert.Equal(t, store.PhaseIdle, conv.Phase)
	assert.Empty(t, conv.Turns)
	assert.Nil(t, conv.Clarification)
	assert.Empty(t, conv.SelectionDomain)
	assert.Empty(t, conv.Selected)
	assert.Nil(t, conv.PendingRetry)
	assert.Empty(t, conv.ContentIndex)
	assert.Empty(t, conv.LeadIndex)
	assert.Empty(t, conv.ConnectInFlight)
}
