package state

import (
	"errors"

	"emily-marketing-be/internal/pkg/logger"
	"emily-marketing-be/pkg/store"

	"github.com/google/uuid"
)

// ErrBusy is returned when a send is attempted while a previous send is
// still in flight. Callers treat it as a no-op, not a failure.
var ErrBusy = errors.New("conversation is busy")

// Machine guards conversation phase transitions:
// IDLE -> SENDING -> (AWAITING_CLARIFICATION | IDLE), any phase -> IDLE on
// reset. SENDING is never re-entered while already SENDING.
type Machine struct {
	logger logger.ILogger
}

func NewMachine(log logger.ILogger) *Machine {
	return &Machine{logger: log}
}

// BeginSend moves the conversation into SENDING. Returns ErrBusy if a send
// is already in flight.
func (m *Machine) BeginSend(conv *store.Conversation) error {
	if conv.Phase == store.PhaseSending {
		return ErrBusy
	}
	conv.Phase = store.PhaseSending
	conv.Clarification = nil
	return nil
}

// FinishSend settles the conversation after a reply (or failure). When the
// assistant is waiting on the user, the clarification prompt stays active.
func (m *Machine) FinishSend(conv *store.Conversation, waitingForUser bool, clarification *store.Clarification) {
	if waitingForUser {
		conv.Phase = store.PhaseAwaitingClarification
		conv.Clarification = clarification
		m.logger.Debug("State", "Awaiting clarification", map[string]interface{}{"conversation_id": conv.ID})
		return
	}
	conv.Phase = store.PhaseIdle
	conv.Clarification = nil
}

// Reset returns the conversation to IDLE from any phase and drops all
// transient state.
func (m *Machine) Reset(conv *store.Conversation) {
	conv.Phase = store.PhaseIdle
	conv.Turns = nil
	conv.Clarification = nil
	conv.SelectionDomain = ""
	conv.Selected = nil
	conv.PendingRetry = nil
	conv.ContentIndex = make(map[uuid.UUID]*store.ContentItem)
	conv.LeadIndex = make(map[uuid.UUID]*store.LeadItem)
	conv.ConnectInFlight = make(map[string]bool)
	m.logger.Info("State", "Conversation reset", map[string]interface{}{"conversation_id": conv.ID})
}
