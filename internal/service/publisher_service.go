// FILE: internal/service/publisher_service.go
package service

import (
	"encoding/json"
	"time"

	"emily-marketing-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IPublisherService interface {
	SchedulePublisher
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) EmitScheduled(userId, recordId uuid.UUID, at time.Time) error {
	payload, err := json.Marshal(dto.SchedulePublishMessage{
		UserId:    userId,
		RecordId:  recordId,
		PublishAt: at,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.pubSub.Publish(p.topicName, msg)
}
