package memory

import (
	"time"

	"emily-marketing-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type ConversationRepository struct {
	cache *cache.Cache
}

func NewConversationRepository() *ConversationRepository {
	// Conversations idle for an hour are dropped, purge runs every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache: c,
	}
}

func (r *ConversationRepository) Save(conv *store.Conversation) {
	r.cache.Set(conv.UserID, conv, cache.DefaultExpiration)
}

func (r *ConversationRepository) Get(userID string) (*store.Conversation, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*store.Conversation), true
	}
	return nil, false
}

func (r *ConversationRepository) Delete(userID string) {
	r.cache.Delete(userID)
}
