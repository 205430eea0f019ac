// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"emily-marketing-be/internal/dto"
	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/repository/specification"
	"emily-marketing-be/internal/repository/unitofwork"
	"emily-marketing-be/pkg/social"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	publisher  social.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	publisher social.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SchedulePublishMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal schedule message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// Hold the message until it is due. The gochannel bus is in-process,
	// so a sleeping goroutine per scheduled item is acceptable.
	if wait := time.Until(payload.PublishAt); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			msg.Nack()
			return
		}
	}

	log.Printf("[INFO] Publishing scheduled content %s", payload.RecordId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.ContentRepository().FindOne(ctx,
		specification.ByID{ID: payload.RecordId},
		specification.UserOwnedBy{UserID: payload.UserId},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to get content %s: %v", payload.RecordId, err)
		msg.Nack()
		return
	}
	if record == nil || record.Status != entity.ContentStatusScheduled {
		// Deleted or rescheduled since. Nothing to do.
		msg.Ack()
		return
	}

	conn, err := uow.ConnectionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: payload.UserId},
		specification.ByPlatform{Platform: record.Platform},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to get connection for %s: %v", record.Platform, err)
		msg.Nack()
		return
	}
	if conn == nil || conn.Expired(time.Now()) {
		// Without a live connection the scheduled publish is parked as a
		// draft; the user re-schedules after reconnecting.
		log.Printf("[WARN] No live %s connection for user %s, reverting %s to draft",
			record.Platform, payload.UserId, payload.RecordId)
		record.Status = entity.ContentStatusDraft
		record.ScheduledFor = nil
		if err := uow.ContentRepository().Update(ctx, record); err != nil {
			log.Printf("[ERROR] Failed to revert content %s: %v", payload.RecordId, err)
		}
		msg.Ack()
		return
	}

	result, err := cs.publisher.Publish(ctx, conn, record)
	if err != nil {
		log.Printf("[ERROR] Failed to publish content %s: %v", payload.RecordId, err)
		msg.Nack()
		return
	}

	now := time.Now()
	record.Status = entity.ContentStatusPublished
	record.PublishedAt = &now
	record.ExternalId = &result.ExternalId
	record.Permalink = &result.Permalink
	record.ScheduledFor = nil
	if err := uow.ContentRepository().Update(ctx, record); err != nil {
		log.Printf("[ERROR] Failed to mark content %s published: %v", payload.RecordId, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Scheduled content published: %s to %s", payload.RecordId, record.Platform)
	msg.Ack()
}
