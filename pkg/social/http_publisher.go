package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/pkg/logger"
)

// HTTPPublisher posts content through the platform gateway, which holds the
// per-platform API integrations. A 401/403 from the gateway means the
// stored token is gone or stale and maps to ConnectionRequiredError.
type HTTPPublisher struct {
	baseURL string
	http    *http.Client
	logger  logger.ILogger
}

func NewHTTPPublisher(baseURL string, timeout time.Duration, log logger.ILogger) *HTTPPublisher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPPublisher{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  log,
	}
}

type publishRequest struct {
	ContentId   string   `json:"content_id"`
	Caption     string   `json:"caption"`
	Hashtags    []string `json:"hashtags,omitempty"`
	MediaUrls   []string `json:"media_urls,omitempty"`
	AccessToken string   `json:"access_token"`
}

type publishResponse struct {
	ExternalId string `json:"external_id"`
	Permalink  string `json:"permalink"`
	Error      string `json:"error,omitempty"`
}

func (p *HTTPPublisher) Publish(ctx context.Context, conn *entity.PlatformConnection, record *entity.ContentRecord) (*PublishResult, error) {
	if conn == nil || conn.AccessToken == "" {
		return nil, &ConnectionRequiredError{Platform: record.Platform}
	}

	payload, err := json.Marshal(publishRequest{
		ContentId:   record.Id.String(),
		Caption:     record.Caption,
		Hashtags:    record.HashtagList(),
		MediaUrls:   record.MediaUrlList(),
		AccessToken: conn.AccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal publish request: %w", err)
	}

	url := fmt.Sprintf("%s/platforms/%s/publish", p.baseURL, record.Platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("publish request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read publish response: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		p.logger.Warn("Social", "Gateway rejected platform token", map[string]interface{}{
			"platform": record.Platform,
			"status":   res.StatusCode,
		})
		return nil, &ConnectionRequiredError{Platform: record.Platform}
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("publish failed: status %d, body: %s", res.StatusCode, string(body))
	}

	var pr publishResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("unmarshal publish response: %w", err)
	}
	if pr.Error != "" {
		return nil, fmt.Errorf("publish rejected: %s", pr.Error)
	}

	return &PublishResult{ExternalId: pr.ExternalId, Permalink: pr.Permalink}, nil
}
