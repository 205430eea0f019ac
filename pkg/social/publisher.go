package social

import (
	"context"
	"errors"
	"fmt"

	"emily-marketing-be/internal/entity"
)

// Supported platforms.
const (
	PlatformGoogle    = "google"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformYouTube   = "youtube"
)

// ErrConnectionRequired signals that the platform account is not linked (or
// its token expired). The conversation service recovers it through the
// OAuth reconnect flow.
var ErrConnectionRequired = errors.New("platform connection required")

// ConnectionRequiredError carries the platform that needs linking.
type ConnectionRequiredError struct {
	Platform string
}

func (e *ConnectionRequiredError) Error() string {
	return fmt.Sprintf("platform %s connection required", e.Platform)
}

func (e *ConnectionRequiredError) Unwrap() error { return ErrConnectionRequired }

// PublishResult is what a platform returns for a successful publish.
type PublishResult struct {
	ExternalId string
	Permalink  string
}

// Publisher pushes a materialized content record to one external platform.
type Publisher interface {
	Publish(ctx context.Context, conn *entity.PlatformConnection, record *entity.ContentRecord) (*PublishResult, error)
}

// KnownPlatform reports whether the platform name is one we can publish to.
func KnownPlatform(platform string) bool {
	switch platform {
	case PlatformGoogle, PlatformFacebook, PlatformInstagram, PlatformLinkedIn, PlatformYouTube:
		return true
	}
	return false
}
