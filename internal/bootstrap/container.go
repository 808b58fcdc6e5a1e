package bootstrap

import (
	"context"
	"log"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/controller"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/redisrepo"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/pkg/llm/factory"

	pkgNats "ai-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	UiTestController controller.IUiTestController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

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

	// 3. Model Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.TogetherBaseURL,
		cfg.Ai.TogetherAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, llmProvider.ModelName())

	// 4. Infrastructure
	// NATS mirror is optional; events stay on the in-process bus without it.
	var natsPub *pkgNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pkgNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// Stream registry: Redis when configured so the one-stream rule holds
	// across instances, in-process otherwise.
	var streamRegistry contract.StreamRegistry
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory stream registry", err)
			streamRegistry = memory.NewStreamRegistry()
		} else {
			streamRegistry = redisrepo.NewStreamRegistry(rdb)
		}
	} else {
		streamRegistry = memory.NewStreamRegistry()
	}

	// 5. Services
	eventPublisher := service.NewEventPublisher(pubSub, cfg.App.EventTopicName, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.App.EventTopicName, natsPub, sysLogger)

	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		streamRegistry,
		eventPublisher,
		sysLogger,
	)
	uiTestService := service.NewUiTestService(
		uowFactory,
		llmProvider,
		eventPublisher,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		ChatController:   controller.NewChatController(chatService),
		UiTestController: controller.NewUiTestController(uiTestService),
		ConsumerService:  consumerService,
		Logger:           sysLogger,
	}
}
