package conversation

import (
	"time"

	"github.com/google/uuid"

	"emily-marketing-be/pkg/assistant"
	"emily-marketing-be/pkg/store"
)

// Factory builds conversation turns and keeps the per-conversation item
// indexes current as bot turns arrive.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateUserTurn builds the optimistic user turn appended before the
// assistant is called.
func (f *Factory) CreateUserTurn(text string, now time.Time) store.Turn {
	return store.Turn{
		Id:        uuid.New(),
		Sender:    store.SenderUser,
		Text:      text,
		Timestamp: now,
	}
}

// CreateBotTurn builds a bot turn from a validated assistant reply.
func (f *Factory) CreateBotTurn(reply *assistant.AgentReply, now time.Time) store.Turn {
	turn := store.Turn{
		Id:                 uuid.New(),
		Sender:             store.SenderBot,
		Text:               reply.Response,
		Timestamp:          now,
		Intent:             reply.Intent,
		AgentName:          reply.AgentName,
		WaitingForUser:     reply.WaitingForUser,
		NeedsConnection:    reply.NeedsConnection,
		ConnectionPlatform: reply.ConnectionPlatform,
	}
	for _, item := range reply.ContentItems {
		turn.ContentItems = append(turn.ContentItems, store.ContentItem{
			Id:        item.Id,
			Caption:   item.Caption,
			Hashtags:  item.Hashtags,
			MediaUrls: item.MediaUrls,
			Platform:  item.Platform,
			Status:    item.Status,
		})
	}
	for _, item := range reply.LeadItems {
		turn.LeadItems = append(turn.LeadItems, store.LeadItem{
			Id:      item.Id,
			Name:    item.Name,
			Email:   item.Email,
			Phone:   item.Phone,
			Company: item.Company,
			Status:  item.Status,
		})
	}
	for _, opt := range reply.ClarificationOptions {
		turn.ClarificationOptions = append(turn.ClarificationOptions, store.ClarificationOption{
			Value:       opt.Value,
			Label:       opt.Label,
			Description: opt.Description,
		})
	}
	return turn
}

// CreateErrorTurn builds the inline error turn appended when a send fails.
func (f *Factory) CreateErrorTurn(message string, now time.Time) store.Turn {
	return store.Turn{
		Id:        uuid.New(),
		Sender:    store.SenderBot,
		Text:      message,
		Timestamp: now,
		IsError:   true,
	}
}

// CreateNoticeTurn builds a plain informational bot turn (confirmations,
// skip warnings).
func (f *Factory) CreateNoticeTurn(message string, now time.Time) store.Turn {
	return store.Turn{
		Id:        uuid.New(),
		Sender:    store.SenderBot,
		Text:      message,
		Timestamp: now,
	}
}

// IndexTurn merges the turn's referenced items into the conversation's
// incremental indexes. Later turns win for the same id.
func (f *Factory) IndexTurn(conv *store.Conversation, turn store.Turn) {
	if conv.ContentIndex == nil {
		conv.ContentIndex = make(map[uuid.UUID]*store.ContentItem)
	}
	if conv.LeadIndex == nil {
		conv.LeadIndex = make(map[uuid.UUID]*store.LeadItem)
	}
	for i := range turn.ContentItems {
		item := turn.ContentItems[i]
		conv.ContentIndex[item.Id] = &item
	}
	for i := range turn.LeadItems {
		item := turn.LeadItems[i]
		conv.LeadIndex[item.Id] = &item
	}
}

// History flattens the turn list into the conversation_history strings the
// assistant expects.
func History(conv *store.Conversation) []string {
	history := make([]string, 0, len(conv.Turns))
	for _, turn := range conv.Turns {
		history = append(history, turn.Sender+": "+turn.Text)
	}
	return history
}
