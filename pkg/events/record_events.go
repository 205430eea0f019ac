package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventRecordCreated = "record.created"

	RecordTypeContent = "content"
	RecordTypeLead    = "lead"
)

// NewRecordCreatedEvent signals that the assistant materialized a new
// content or lead record for a user.
func NewRecordCreatedEvent(userId, recordId uuid.UUID, recordType string) Event {
	return BaseEvent{
		Type: EventRecordCreated,
		Data: map[string]interface{}{
			"user_id":     userId.String(),
			"record_id":   recordId.String(),
			"record_type": recordType,
			"created_at":  time.Now().UTC().Format(time.RFC3339),
		},
		OccurredAt: time.Now(),
	}
}
