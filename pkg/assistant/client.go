package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"emily-marketing-be/internal/pkg/logger"
)

const (
	chatEndpoint  = "/chat"
	resetEndpoint = "/reset"

	defaultTimeout = 60 * time.Second
)

// RequestError is a transport or non-2xx failure talking to the assistant
// gateway. Callers recover it as an inline error turn, never a crash.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("assistant request failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("assistant request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Client talks to the hosted agent gateway over HTTP/JSON. Requests carry a
// timeout and run through a circuit breaker so a degraded gateway fails
// fast instead of piling up in-flight calls.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  logger.ILogger
}

func NewClient(baseURL string, timeout time.Duration, log logger.ILogger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "AssistantGateway",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Assistant", "Circuit breaker state change", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
		logger:  log,
	}
}

// Chat sends the user message plus conversation history and returns the
// validated structured reply.
func (c *Client) Chat(ctx context.Context, request *ChatRequest) (*AgentReply, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doChat(ctx, request)
	})
	if err != nil {
		if _, ok := err.(*RequestError); ok {
			return nil, err
		}
		// Breaker open / too many requests counts as a transport failure.
		return nil, &RequestError{Err: err}
	}
	return result.(*AgentReply), nil
}

func (c *Client) doChat(ctx context.Context, request *ChatRequest) (*AgentReply, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatEndpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("read response: %w", err)}
	}

	if res.StatusCode != http.StatusOK {
		c.logger.Warn("Assistant", "Non-OK gateway response", map[string]interface{}{
			"status": res.StatusCode,
			"body":   string(body),
		})
		return nil, &RequestError{StatusCode: res.StatusCode}
	}

	var reply AgentReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, &RequestError{Err: fmt.Errorf("unmarshal reply: %w", err)}
	}
	if err := reply.Validate(); err != nil {
		return nil, &RequestError{Err: fmt.Errorf("invalid reply: %w", err)}
	}

	return &reply, nil
}

// Reset tells the gateway to drop its server-side conversation state. It is
// best-effort: errors are logged and swallowed so a local reset never
// blocks on the network.
func (c *Client) Reset(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+resetEndpoint, nil)
	if err != nil {
		c.logger.Warn("Assistant", "Reset request build failed", map[string]interface{}{"error": err.Error()})
		return
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Assistant", "Reset request failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
}
