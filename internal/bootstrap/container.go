package bootstrap

import (
	"context"
	"fmt"
	"time"

	"offline-chat-be/internal/config"
	"offline-chat-be/internal/controller"
	"offline-chat-be/internal/entity"
	"offline-chat-be/internal/handler"
	"offline-chat-be/internal/pkg/logger"
	"offline-chat-be/internal/repository/contract"
	"offline-chat-be/internal/repository/memory"
	"offline-chat-be/internal/repository/migration"
	"offline-chat-be/internal/repository/redisstore"
	"offline-chat-be/internal/repository/unitofwork"
	"offline-chat-be/internal/service"
	"offline-chat-be/internal/websocket"
	"offline-chat-be/pkg/events"
	"offline-chat-be/pkg/llm"
	"offline-chat-be/pkg/llm/factory"
	pktNats "offline-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AskController          controller.IAskController
	ChatController         controller.IChatController
	ChatCategoryController controller.ICategoryController
	NoteCategoryController controller.ICategoryController
	NoteController         controller.INoteController
	PersonalityController  controller.IPersonalityController
	SettingsController     controller.ISettingsController
	DataController         controller.IDataController

	// Status stream
	StatusHandler *handler.StatusHandler
	WebSocketHub  *websocket.Hub

	// Background services, started by Start
	AnalysisService service.IAnalysisService

	Logger logger.ILogger

	llmProvider llm.LLMProvider
	bus         *pktNats.Bus
	rdb         *redis.Client
	pubSub      *gochannel.GoChannel
}

const modelCheckTimeout = 5 * time.Second

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	analysisLogger := logger.NewIsolatedLogger(cfg.App.AnalysisLogPath)

	if err := migration.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 2. Analysis pipeline (in-process)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)

	// 3. Optional infrastructure
	rdb := connectRedis(cfg.App.RedisURL, sysLogger)
	wsHub := websocket.NewHub(rdb, uuid.New().String(), sysLogger)

	var bus *pktNats.Bus
	if cfg.App.NatsURL != "" {
		var err error
		if bus, err = pktNats.Connect(cfg.App.NatsURL, cfg.Keys.ChatEventStream, sysLogger); err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS unavailable, events stay local", map[string]interface{}{"error": err.Error()})
		}
	}

	// Without a broker the hub receives events directly.
	var eventPublisher events.Publisher = wsHub
	if bus != nil {
		eventPublisher = bus
	}

	var viewStateRepo contract.ViewStateRepository
	if rdb != nil {
		viewStateRepo = redisstore.NewViewStateRepository(rdb, cfg.App.ViewStateTTL)
	} else {
		viewStateRepo = memory.NewViewStateRepository(cfg.App.ViewStateTTL)
	}

	// 4. Model collaborator
	baseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		baseURL = cfg.Ai.LLMBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  baseURL,
		APIKey:   cfg.Keys.LLMAPIKey,
		Timeout:  cfg.Ai.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 5. Services
	chatService := service.NewChatService(uowFactory, eventPublisher, sysLogger)
	chatCategoryService := service.NewCategoryService(entity.CategoryKindChat, uowFactory, eventPublisher, sysLogger)
	noteCategoryService := service.NewCategoryService(entity.CategoryKindNote, uowFactory, eventPublisher, sysLogger)
	noteService := service.NewNoteService(uowFactory)
	personalityService := service.NewPersonalityService(uowFactory)
	preferenceService := service.NewPreferenceService(uowFactory)
	promptHistoryService := service.NewPromptHistoryService(uowFactory)
	viewStateService := service.NewViewStateService(viewStateRepo)
	searchService := service.NewSearchService(uowFactory)
	backupService := service.NewBackupService(uowFactory, eventPublisher, sysLogger)

	analysisPublisher := service.NewPublisherService(cfg.Keys.AnalysisTopic, pubSub)
	analysisService := service.NewAnalysisService(pubSub, cfg.Keys.AnalysisTopic, cfg.App.AnalysisDir, analysisLogger, sysLogger)

	askService := service.NewAskService(
		chatService,
		personalityService,
		llmProvider,
		service.NewGenerationTracker(),
		analysisPublisher,
		eventPublisher,
		sysLogger,
		service.AskServiceConfig{
			Model:            cfg.Ai.LLMModel,
			MaxContextTokens: cfg.Ai.MaxContextTokens,
			Temperature:      cfg.Ai.Temperature,
		},
	)

	// 6. Controllers
	return &Container{
		AskController:          controller.NewAskController(askService),
		ChatController:         controller.NewChatController(chatService),
		ChatCategoryController: controller.NewCategoryController("/categories", chatCategoryService),
		NoteCategoryController: controller.NewCategoryController("/note-categories", noteCategoryService),
		NoteController:         controller.NewNoteController(noteService),
		PersonalityController:  controller.NewPersonalityController(personalityService),
		SettingsController:     controller.NewSettingsController(promptHistoryService, preferenceService, viewStateService),
		DataController:         controller.NewDataController(searchService, backupService, analysisService),

		StatusHandler: handler.NewStatusHandler(wsHub, sysLogger),
		WebSocketHub:  wsHub,

		AnalysisService: analysisService,
		Logger:          sysLogger,

		llmProvider: llmProvider,
		bus:         bus,
		rdb:         rdb,
		pubSub:      pubSub,
	}, nil
}

// connectRedis returns nil when url is empty or the server does not answer.
func connectRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unavailable, view state stays in memory", map[string]interface{}{"error": err.Error()})
		rdb.Close()
		return nil
	}
	return rdb
}

// Start runs the background workers until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	go c.checkModel(ctx)

	if err := c.AnalysisService.Consume(ctx); err != nil {
		return fmt.Errorf("analysis consumer: %w", err)
	}

	if c.bus != nil {
		if err := c.StatusHandler.Listen(ctx, c.bus); err != nil {
			return fmt.Errorf("status listener: %w", err)
		}
	}
	return nil
}

// checkModel only logs; the server keeps running so the UI can show the
// failure on the first request.
func (c *Container) checkModel(ctx context.Context) {
	checker, ok := c.llmProvider.(llm.HealthChecker)
	if !ok {
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	if err := checker.Ping(pingCtx); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Model server check failed", map[string]interface{}{"error": err.Error()})
		return
	}
	c.Logger.Info("BOOTSTRAP", "Model server reachable", nil)
}

func (c *Container) Close() {
	if c.bus != nil {
		c.bus.Close()
	}
	if c.rdb != nil {
		c.rdb.Close()
	}
	if err := c.pubSub.Close(); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to close analysis pubsub", map[string]interface{}{"error": err.Error()})
	}
	_ = c.Logger.Sync()
}
