// FILE: internal/dto/conversation_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Message   string   `json:"message" validate:"required"`
	MediaUrls []string `json:"media_urls,omitempty" validate:"max=10,dive,url"`
}

type SelectOptionRequest struct {
	Value string `json:"value" validate:"required"`
}

type DateRangeRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"omitempty"`
}

type ToggleContentSelectionRequest struct {
	ContentId uuid.UUID `json:"content_id" validate:"required"`
	Intent    string    `json:"intent" validate:"required"`
}

type ToggleLeadSelectionRequest struct {
	LeadId uuid.UUID `json:"lead_id" validate:"required"`
}

type ScheduleSelectedRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"omitempty"`
}

type TurnDTO struct {
	Id                   uuid.UUID                `json:"id"`
	Sender               string                   `json:"sender"`
	Text                 string                   `json:"text"`
	Timestamp            time.Time                `json:"timestamp"`
	Intent               string                   `json:"intent,omitempty"`
	AgentName            string                   `json:"agent_name,omitempty"`
	ContentItems         []ContentItemDTO         `json:"content_items,omitempty"`
	LeadItems            []LeadItemDTO            `json:"lead_items,omitempty"`
	ClarificationOptions []ClarificationOptionDTO `json:"clarification_options,omitempty"`
	WaitingForUser       bool                     `json:"waiting_for_user,omitempty"`
	IsError              bool                     `json:"is_error,omitempty"`
}

type ContentItemDTO struct {
	Id        uuid.UUID `json:"id"`
	Caption   string    `json:"caption"`
	Hashtags  []string  `json:"hashtags,omitempty"`
	MediaUrls []string  `json:"media_urls,omitempty"`
	Platform  string    `json:"platform"`
	Status    string    `json:"status"`
}

type LeadItemDTO struct {
	Id      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Company string    `json:"company,omitempty"`
	Status  string    `json:"status"`
}

type ClarificationOptionDTO struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Directive types returned alongside turns. The client reacts to these
// instead of inspecting turn internals.
const (
	DirectiveOpenUpload      = "open_upload"
	DirectiveOpenDatePicker  = "open_date_picker"
	DirectiveConnectRequired = "connect_required"
)

type DirectiveDTO struct {
	Type     string `json:"type"`
	DelayMs  int64  `json:"delay_ms,omitempty"`
	Platform string `json:"platform,omitempty"`
	AuthUrl  string `json:"auth_url,omitempty"`
}

type SelectionDTO struct {
	Domain string      `json:"domain,omitempty"`
	Ids    []uuid.UUID `json:"ids"`
}

type ConversationResponse struct {
	ConversationId uuid.UUID      `json:"conversation_id"`
	Phase          string         `json:"phase"`
	Turns          []TurnDTO      `json:"turns"`
	Directives     []DirectiveDTO `json:"directives,omitempty"`
	Selection      SelectionDTO   `json:"selection"`
}

type FailedItemDTO struct {
	Id     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

type BatchActionResponse struct {
	Succeeded  []uuid.UUID     `json:"succeeded"`
	Failed     []FailedItemDTO `json:"failed,omitempty"`
	Turns      []TurnDTO       `json:"turns,omitempty"`
	Directives []DirectiveDTO  `json:"directives,omitempty"`
}
