// FILE: internal/service/connection_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"emily-marketing-be/internal/config"
	"emily-marketing-be/internal/dto"
	"emily-marketing-be/internal/entity"
	"emily-marketing-be/internal/pkg/logger"
	"emily-marketing-be/internal/repository/specification"
	"emily-marketing-be/internal/repository/unitofwork"
	"emily-marketing-be/pkg/connect"
	"emily-marketing-be/pkg/social"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var ErrUnsupportedPlatform = errors.New("unsupported platform")

type IConnectionService interface {
	Initiate(ctx context.Context, userId uuid.UUID, platform string) (*dto.InitiateConnectionResponse, error)
	HandleCallback(ctx context.Context, state, code string, providerErr string) (string, error)
	AwaitCompletion(ctx context.Context, userId uuid.UUID, platform string) error
	Cancel(ctx context.Context, userId uuid.UUID, platform string) error
	Status(ctx context.Context, userId uuid.UUID) ([]dto.ConnectionStatusResponse, error)
	Disconnect(ctx context.Context, userId uuid.UUID, platform string) error
}

// pendingState is what an OAuth state token points at while the grant is
// in flight.
type pendingState struct {
	UserId   uuid.UUID
	Platform string
}

type connectionService struct {
	uowFactory   unitofwork.RepositoryFactory
	conversation IConversationService
	registry     *connect.Registry
	states       *cache.Cache
	configs      map[string]*oauth2.Config
	logger       logger.ILogger
}

func NewConnectionService(
	uowFactory unitofwork.RepositoryFactory,
	conversationService IConversationService,
	registry *connect.Registry,
	oauthCfg config.OAuthConfig,
	log logger.ILogger,
) IConnectionService {
	return &connectionService{
		uowFactory:   uowFactory,
		conversation: conversationService,
		registry:     registry,
		// State tokens are single-use and short lived.
		states:  cache.New(10*time.Minute, 5*time.Minute),
		configs: buildOAuthConfigs(oauthCfg),
		logger:  log,
	}
}

func buildOAuthConfigs(cfg config.OAuthConfig) map[string]*oauth2.Config {
	return map[string]*oauth2.Config{
		social.PlatformGoogle: {
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/business.manage"},
			Endpoint:     endpoints.Google,
		},
		social.PlatformFacebook: {
			ClientID:     cfg.Facebook.ClientID,
			ClientSecret: cfg.Facebook.ClientSecret,
			RedirectURL:  cfg.Facebook.RedirectURL,
			Scopes:       []string{"pages_manage_posts", "pages_read_engagement"},
			Endpoint:     endpoints.Facebook,
		},
		social.PlatformInstagram: {
			ClientID:     cfg.Instagram.ClientID,
			ClientSecret: cfg.Instagram.ClientSecret,
			RedirectURL:  cfg.Instagram.RedirectURL,
			Scopes:       []string{"instagram_basic", "instagram_content_publish"},
			Endpoint:     endpoints.Instagram,
		},
		social.PlatformLinkedIn: {
			ClientID:     cfg.LinkedIn.ClientID,
			ClientSecret: cfg.LinkedIn.ClientSecret,
			RedirectURL:  cfg.LinkedIn.RedirectURL,
			Scopes:       []string{"w_member_social"},
			Endpoint:     endpoints.LinkedIn,
		},
		social.PlatformYouTube: {
			ClientID:     cfg.YouTube.ClientID,
			ClientSecret: cfg.YouTube.ClientSecret,
			RedirectURL:  cfg.YouTube.RedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/youtube.upload"},
			Endpoint:     endpoints.Google,
		},
	}
}

func attemptKey(userId uuid.UUID, platform string) string {
	return userId.String() + ":" + platform
}

func (s *connectionService) Initiate(ctx context.Context, userId uuid.UUID, platform string) (*dto.InitiateConnectionResponse, error) {
	conf, ok := s.configs[platform]
	if !ok {
		return nil, ErrUnsupportedPlatform
	}

	if _, err := s.registry.Begin(attemptKey(userId, platform), platform); err != nil {
		return nil, err
	}

	b := make([]byte, 16)
	rand.Read(b)
	stateToken := base64.URLEncoding.EncodeToString(b)
	s.states.Set(stateToken, pendingState{UserId: userId, Platform: platform}, cache.DefaultExpiration)

	authURL := conf.AuthCodeURL(stateToken, oauth2.AccessTypeOffline)
	s.logger.Info("Connection", "OAuth attempt started", map[string]interface{}{
		"user_id":  userId.String(),
		"platform": platform,
	})

	return &dto.InitiateConnectionResponse{
		Platform: platform,
		AuthUrl:  authURL,
		State:    stateToken,
	}, nil
}

// HandleCallback finishes the grant. It returns the platform so the
// controller can redirect back to the dashboard.
func (s *connectionService) HandleCallback(ctx context.Context, stateToken, code string, providerErr string) (string, error) {
	v, found := s.states.Get(stateToken)
	if !found {
		return "", errors.New("unknown or expired state")
	}
	s.states.Delete(stateToken)
	pending := v.(pendingState)
	key := attemptKey(pending.UserId, pending.Platform)

	if providerErr != "" {
		err := fmt.Errorf("provider error: %s", providerErr)
		s.registry.Resolve(key, err)
		s.conversation.ResumeAfterConnect(ctx, pending.UserId, pending.Platform, err)
		return pending.Platform, nil
	}

	conf := s.configs[pending.Platform]
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		exchangeErr := fmt.Errorf("code exchange failed: %w", err)
		s.registry.Resolve(key, exchangeErr)
		s.conversation.ResumeAfterConnect(ctx, pending.UserId, pending.Platform, exchangeErr)
		return pending.Platform, exchangeErr
	}

	conn := &entity.PlatformConnection{
		Id:           uuid.New(),
		UserId:       pending.UserId,
		Platform:     pending.Platform,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		CreatedAt:    time.Now(),
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		conn.ExpiresAt = &expiry
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConnectionRepository().Upsert(ctx, conn); err != nil {
		s.registry.Resolve(key, err)
		s.conversation.ResumeAfterConnect(ctx, pending.UserId, pending.Platform, err)
		return pending.Platform, err
	}

	s.logger.Info("Connection", "Platform linked", map[string]interface{}{
		"user_id":  pending.UserId.String(),
		"platform": pending.Platform,
	})

	s.registry.Resolve(key, nil)
	s.conversation.ResumeAfterConnect(ctx, pending.UserId, pending.Platform, nil)
	return pending.Platform, nil
}

// AwaitCompletion blocks until the pending attempt for the platform
// resolves, the context expires, or there is no attempt to wait on. The
// dashboard long-polls this instead of polling the status endpoint.
func (s *connectionService) AwaitCompletion(ctx context.Context, userId uuid.UUID, platform string) error {
	w, ok := s.registry.Lookup(attemptKey(userId, platform))
	if !ok {
		return connect.ErrNoAttempt
	}
	res, err := w.Await(ctx)
	if err != nil {
		return err
	}
	return res.Err
}

// Cancel abandons a pending attempt (the dashboard closed the window).
func (s *connectionService) Cancel(ctx context.Context, userId uuid.UUID, platform string) error {
	key := attemptKey(userId, platform)
	if err := s.registry.Cancel(key); err != nil {
		return err
	}
	s.conversation.ResumeAfterConnect(ctx, userId, platform, connect.ErrCancelled)
	return nil
}

func (s *connectionService) Status(ctx context.Context, userId uuid.UUID) ([]dto.ConnectionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conns, err := uow.ConnectionRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	byPlatform := make(map[string]*entity.PlatformConnection, len(conns))
	for _, c := range conns {
		byPlatform[c.Platform] = c
	}

	out := make([]dto.ConnectionStatusResponse, 0, len(s.configs))
	for _, platform := range []string{
		social.PlatformGoogle,
		social.PlatformFacebook,
		social.PlatformInstagram,
		social.PlatformLinkedIn,
		social.PlatformYouTube,
	} {
		status := dto.ConnectionStatusResponse{Platform: platform}
		if c, ok := byPlatform[platform]; ok {
			status.Connected = !c.Expired(time.Now())
			status.AccountName = c.AccountName
			status.ExpiresAt = c.ExpiresAt
		}
		out = append(out, status)
	}
	return out, nil
}

func (s *connectionService) Disconnect(ctx context.Context, userId uuid.UUID, platform string) error {
	if !social.KnownPlatform(platform) {
		return ErrUnsupportedPlatform
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ConnectionRepository().Delete(ctx, userId, platform)
}
