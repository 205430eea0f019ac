package bootstrap

import (
	"context"
	"log"

	"emily-marketing-be/internal/config"
	"emily-marketing-be/internal/constant"
	"emily-marketing-be/internal/controller"
	"emily-marketing-be/internal/handler"
	"emily-marketing-be/internal/pkg/logger"
	"emily-marketing-be/internal/repository/memory"
	"emily-marketing-be/internal/repository/unitofwork"
	"emily-marketing-be/internal/service"
	"emily-marketing-be/internal/websocket"
	"emily-marketing-be/pkg/assistant"
	"emily-marketing-be/pkg/connect"
	"emily-marketing-be/pkg/social"

	pktNats "emily-marketing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	ConversationController controller.IConversationController
	ConnectionController   controller.IConnectionController
	RecordController       controller.IRecordController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Feed
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// In-Memory Conversation Storage
	convRepo := memory.NewConversationRepository()

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/feed.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Gateway clients
	assistantClient := assistant.NewClient(cfg.Assistant.BaseURL, cfg.Assistant.Timeout, sysLogger)
	socialPublisher := social.NewHTTPPublisher(cfg.Social.PublishBaseURL, cfg.Social.PublishTimeout, sysLogger)

	// 3. Services
	publisherService := service.NewPublisherService(constant.SchedulePublishTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.SchedulePublishTopic,
		uowFactory,
		socialPublisher,
	)

	authService := service.NewAuthService(uowFactory, cfg.Auth)

	conversationService := service.NewConversationService(
		uowFactory,
		convRepo,
		assistantClient,
		socialPublisher,
		publisherService,
		natsPub,
		sysLogger,
	)

	connectRegistry := connect.NewRegistry()
	connectionService := service.NewConnectionService(
		uowFactory,
		conversationService,
		connectRegistry,
		cfg.OAuth,
		sysLogger,
	)

	recordService := service.NewRecordService(uowFactory)

	// 3.5 Live Feed
	feedService := service.NewFeedService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go feedService.Start()
	}
	feedHandler := handler.NewFeedHandler(feedService, wsHub, cfg.Auth.JWTSecret, wsLogger)

	// 4. Controllers
	return &Container{
		FeedHandler:  feedHandler,
		WebSocketHub: wsHub,

		AuthController:         controller.NewAuthController(authService),
		ConversationController: controller.NewConversationController(conversationService),
		ConnectionController:   controller.NewConnectionController(connectionService, cfg.App.ClientURL),
		RecordController:       controller.NewRecordController(recordService),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
