// FILE: internal/dto/schedule_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// SchedulePublishMessage travels over the in-process bus from the moment
// content is scheduled until the consumer publishes it.
type SchedulePublishMessage struct {
	UserId    uuid.UUID `json:"user_id"`
	RecordId  uuid.UUID `json:"record_id"`
	PublishAt time.Time `json:"publish_at"`
}
