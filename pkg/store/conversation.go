package store

import (
	"time"

	"github.com/google/uuid"
)

// Conversation phases
const (
	PhaseIdle                  = "IDLE"
	PhaseSending               = "SENDING"
	PhaseAwaitingClarification = "AWAITING_CLARIFICATION"
)

// Turn senders
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Selection domains
const (
	DomainContent = "content"
	DomainLeads   = "leads"
)

// ContentItem is a generated piece of content referenced by a bot turn.
type ContentItem struct {
	Id        uuid.UUID `json:"id"`
	Caption   string    `json:"caption"`
	Hashtags  []string  `json:"hashtags,omitempty"`
	MediaUrls []string  `json:"media_urls,omitempty"`
	Platform  string    `json:"platform"`
	Status    string    `json:"status"` // "draft" | "scheduled" | "published"
}

// LeadItem is a CRM lead referenced by a bot turn.
type LeadItem struct {
	Id      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Company string    `json:"company,omitempty"`
	Status  string    `json:"status"`
}

// ClarificationOption is one choice offered by the assistant.
type ClarificationOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Turn is one message in the conversation thread. Turns are append-only;
// only status patches on referenced items are applied after the fact.
type Turn struct {
	Id                   uuid.UUID             `json:"id"`
	Sender               string                `json:"sender"` // "user" | "bot"
	Text                 string                `json:"text"`
	Timestamp            time.Time             `json:"timestamp"`
	Intent               string                `json:"intent,omitempty"`
	AgentName            string                `json:"agent_name,omitempty"`
	ContentItems         []ContentItem         `json:"content_items,omitempty"`
	LeadItems            []LeadItem            `json:"lead_items,omitempty"`
	ClarificationOptions []ClarificationOption `json:"clarification_options,omitempty"`
	WaitingForUser       bool                  `json:"waiting_for_user"`
	NeedsConnection      bool                  `json:"needs_connection"`
	ConnectionPlatform   string                `json:"connection_platform,omitempty"`
	IsError              bool                  `json:"is_error,omitempty"`
}

// Clarification is the active prompt state. Exists only while the latest
// bot turn has WaitingForUser set; cleared on the next user action.
type Clarification struct {
	Options  []ClarificationOption `json:"options"`
	DataType string                `json:"data_type,omitempty"` // "upload_request" | "date_picker" | ""
}

// ConnectionRetry is the pending replay created when the assistant signals
// needs_connection. Replayed at most once per attempt.
type ConnectionRetry struct {
	Platform       string `json:"platform"`
	PendingMessage string `json:"pending_message"`
}

// Conversation is the per-user in-memory conversation state. All mutation
// goes through the conversation service under the conversation lock.
type Conversation struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Phase  string `json:"phase"`

	Turns         []Turn         `json:"turns"`
	Clarification *Clarification `json:"clarification,omitempty"`

	// Selection never spans both domains at once.
	SelectionDomain string      `json:"selection_domain,omitempty"`
	Selected        []uuid.UUID `json:"selected,omitempty"`

	PendingRetry *ConnectionRetry `json:"pending_retry,omitempty"`

	// Incrementally maintained indexes over items referenced by turns,
	// so batch actions never rescan the turn history.
	ContentIndex map[uuid.UUID]*ContentItem `json:"-"`
	LeadIndex    map[uuid.UUID]*LeadItem    `json:"-"`

	// One OAuth attempt per platform at a time.
	ConnectInFlight map[string]bool `json:"-"`
}

// LastUserText returns the text of the newest user turn, or "".
func (c *Conversation) LastUserText() string {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Sender == SenderUser {
			return c.Turns[i].Text
		}
	}
	return ""
}
