package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emily-marketing-be/internal/pkg/logger"
)

func TestChatDecodesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "write a post", req.Message)
		assert.Len(t, req.ConversationHistory, 2)

		json.NewEncoder(w).Encode(AgentReply{
			Response:  "Here are three captions.",
			Intent:    IntentGenerateContent,
			AgentName: "Content Studio",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logger.NewNopLogger())
	reply, err := client.Chat(context.Background(), &ChatRequest{
		Message:             "write a post",
		ConversationHistory: []string{"user: hi", "bot: hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, IntentGenerateContent, reply.Intent)
	assert.Equal(t, "Content Studio", reply.AgentName)
}

func TestChatNonOKIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logger.NewNopLogger())
	_, err := client.Chat(context.Background(), &ChatRequest{Message: "hi"})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
}

func TestChatRejectsInvalidReplyShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// needs_connection without a platform violates the reply contract.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response":         "connect first",
			"intent":           IntentPublishContent,
			"needs_connection": true,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, logger.NewNopLogger())
	_, err := client.Chat(context.Background(), &ChatRequest{Message: "publish"})
	assert.Error(t, err)
}

func TestValidateDefaultsAndIntents(t *testing.T) {
	reply := &AgentReply{Response: "hi"}
	require.NoError(t, reply.Validate())
	assert.Equal(t, IntentConversation, reply.Intent)

	reply = &AgentReply{Response: "?", Intent: "teleport"}
	assert.Error(t, reply.Validate())

	reply = &AgentReply{
		Response:             "pick one",
		Intent:               IntentClarify,
		ClarificationOptions: []ClarificationOption{{Value: "a", Label: "A"}},
	}
	assert.Error(t, reply.Validate(), "options without waiting_for_user must fail")

	reply.WaitingForUser = true
	assert.NoError(t, reply.Validate())
}

func TestResetIsBestEffort(t *testing.T) {
	// Reset against a dead endpoint must not panic or return anything.
	client := NewClient("http://127.0.0.1:1", time.Second, logger.NewNopLogger())
	client.Reset(context.Background())
}
