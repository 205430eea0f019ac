// FILE: internal/service/feed_service.go
package service

import (
	"context"
	"sync"

	"emily-marketing-be/internal/pkg/logger"
	"emily-marketing-be/internal/websocket"
	"emily-marketing-be/pkg/events"
	pktNats "emily-marketing-be/pkg/nats"

	"github.com/google/uuid"
)

// FeedCounters is the per-user tally of records created during the session.
// The dashboard badges update from this.
type FeedCounters struct {
	Content int `json:"content"`
	Leads   int `json:"leads"`
}

// FeedService listens for record.created events and pushes counter updates
// over the websocket hub. Counting is idempotent: replayed events for a
// record id already seen do not bump the counter again.
type FeedService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger

	mu       sync.Mutex
	counters map[uuid.UUID]*FeedCounters
	seen     map[uuid.UUID]bool
}

func NewFeedService(sub *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) *FeedService {
	return &FeedService{
		subscriber: sub,
		hub:        hub,
		logger:     log,
		counters:   make(map[uuid.UUID]*FeedCounters),
		seen:       make(map[uuid.UUID]bool),
	}
}

// Start begins listening to the event bus.
func (s *FeedService) Start() {
	err := s.subscriber.Subscribe("events.record.created", "feed-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("FeedService", "Failed to start feed subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("FeedService", "Feed service started, listening to events.record.created", nil)
}

func (s *FeedService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userIdStr, _ := payload["user_id"].(string)
	recordIdStr, _ := payload["record_id"].(string)
	recordType, _ := payload["record_type"].(string)

	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		s.logger.Warn("FeedService", "Event missing user_id", map[string]interface{}{"payload": payload})
		return nil
	}
	recordId, err := uuid.Parse(recordIdStr)
	if err != nil {
		s.logger.Warn("FeedService", "Event missing record_id", map[string]interface{}{"payload": payload})
		return nil
	}

	counters, bumped := s.bump(userId, recordId, recordType)
	if !bumped {
		return nil
	}

	if s.hub != nil {
		s.hub.Send(userId, websocket.FeedMessage{
			Type: "record_counters",
			Data: counters,
		})
	}
	return nil
}

// bump increments the user's counter for recordType unless recordId was
// already counted. Returns a snapshot and whether anything changed.
func (s *FeedService) bump(userId, recordId uuid.UUID, recordType string) (FeedCounters, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[recordId] {
		c := s.counters[userId]
		if c == nil {
			return FeedCounters{}, false
		}
		return *c, false
	}
	s.seen[recordId] = true

	c := s.counters[userId]
	if c == nil {
		c = &FeedCounters{}
		s.counters[userId] = c
	}
	switch recordType {
	case events.RecordTypeContent:
		c.Content++
	case events.RecordTypeLead:
		c.Leads++
	default:
		return *c, false
	}
	return *c, true
}

// Counters returns the current tally for a user.
func (s *FeedService) Counters(userId uuid.UUID) FeedCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.counters[userId]; ok {
		return *c
	}
	return FeedCounters{}
}

// ResetCounters zeroes the tally, typically when the dashboard marks the
// feed as read.
func (s *FeedService) ResetCounters(userId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, userId)
}
