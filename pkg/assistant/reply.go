package assistant

import (
	"fmt"

	"github.com/google/uuid"
)

// Assistant intents. The reply shape is validated against the intent at the
// boundary so downstream code never duck-types optional fields.
const (
	IntentConversation    = "conversation"
	IntentGenerateContent = "generate_content"
	IntentPublishContent  = "publish_content"
	IntentScheduleContent = "schedule_content"
	IntentManageLeads     = "manage_leads"
	IntentClarify         = "clarify"
	IntentUploadRequest   = "upload_request"
	IntentInsights        = "insights"
)

// Upload types for waiting_for_upload replies.
const (
	UploadTypeImage = "image"
	UploadTypeVideo = "video"
)

var knownIntents = map[string]bool{
	IntentConversation:    true,
	IntentGenerateContent: true,
	IntentPublishContent:  true,
	IntentScheduleContent: true,
	IntentManageLeads:     true,
	IntentClarify:         true,
	IntentUploadRequest:   true,
	IntentInsights:        true,
}

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	Message             string   `json:"message"`
	ConversationHistory []string `json:"conversation_history"`
	MediaUrls           []string `json:"media_urls,omitempty"`
}

// ContentItem mirrors a generated content record in the reply.
type ContentItem struct {
	Id        uuid.UUID `json:"id"`
	Caption   string    `json:"caption"`
	Hashtags  []string  `json:"hashtags,omitempty"`
	MediaUrls []string  `json:"media_urls,omitempty"`
	Platform  string    `json:"platform"`
	Status    string    `json:"status"`
}

// LeadItem mirrors a lead record in the reply.
type LeadItem struct {
	Id      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Company string    `json:"company,omitempty"`
	Status  string    `json:"status"`
}

// ClarificationOption is one choice in a clarify reply.
type ClarificationOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// AgentReply is the structured POST /chat response.
type AgentReply struct {
	Response             string                `json:"response"`
	Intent               string                `json:"intent"`
	CurrentStep          string                `json:"current_step,omitempty"`
	AgentName            string                `json:"agent_name,omitempty"`
	WaitingForUser       bool                  `json:"waiting_for_user"`
	WaitingForUpload     bool                  `json:"waiting_for_upload"`
	UploadType           string                `json:"upload_type,omitempty"`
	PayloadComplete      bool                  `json:"payload_complete"`
	ContentItems         []ContentItem         `json:"content_items,omitempty"`
	LeadId               string                `json:"lead_id,omitempty"`
	LeadItems            []LeadItem            `json:"lead_items,omitempty"`
	ClarificationOptions []ClarificationOption `json:"clarification_options,omitempty"`
	ClarificationData    string                `json:"clarification_data,omitempty"`
	NeedsConnection      bool                  `json:"needs_connection"`
	ConnectionPlatform   string                `json:"connection_platform,omitempty"`
	Error                string                `json:"error,omitempty"`
}

// Validate enforces the per-intent shape of the reply. It runs once at the
// client boundary so the conversation service can rely on the invariants.
func (r *AgentReply) Validate() error {
	if r.Intent == "" {
		r.Intent = IntentConversation
	}
	if !knownIntents[r.Intent] {
		return fmt.Errorf("unknown intent %q", r.Intent)
	}
	if len(r.ClarificationOptions) > 0 && !r.WaitingForUser {
		return fmt.Errorf("clarification options present but waiting_for_user is false")
	}
	for i, opt := range r.ClarificationOptions {
		if opt.Value == "" {
			return fmt.Errorf("clarification option %d has empty value", i)
		}
	}
	if r.NeedsConnection && r.ConnectionPlatform == "" {
		return fmt.Errorf("needs_connection set without connection_platform")
	}
	if r.WaitingForUpload && r.UploadType == "" {
		r.UploadType = UploadTypeImage
	}
	return nil
}
