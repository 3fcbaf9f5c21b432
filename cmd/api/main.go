package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/analyzer"
	"github.com/topic-pulse/backend/internal/api/handlers"
	cacheredis "github.com/topic-pulse/backend/internal/cache/redis"
	"github.com/topic-pulse/backend/internal/dashboard"
	"github.com/topic-pulse/backend/internal/entities"
	"github.com/topic-pulse/backend/internal/llm"
	"github.com/topic-pulse/backend/internal/metrics"
	"github.com/topic-pulse/backend/internal/middleware/ratelimit"
	"github.com/topic-pulse/backend/internal/middleware/security"
	"github.com/topic-pulse/backend/internal/middleware/validation"
	"github.com/topic-pulse/backend/internal/search/twitter"
	"github.com/topic-pulse/backend/internal/sentiment"
	"github.com/topic-pulse/backend/internal/storage/sqlite"
	"github.com/topic-pulse/backend/internal/themes"
	"github.com/topic-pulse/backend/pkg/config"
	appLogger "github.com/topic-pulse/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Topic Pulse API Server")

	metrics.Init()

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var dashboardCache dashboard.Cache
	if cfg.Redis.Enabled {
		redisClient, err := cacheredis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, dashboard caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			dashboardCache = redisClient
		}
	}

	searchClient := twitter.NewClient(
		cfg.Twitter.BearerToken,
		cfg.Twitter.NitterBase,
		time.Duration(cfg.Twitter.TimeoutSec)*time.Second,
	)

	classifier := sentiment.NewClient(
		cfg.Sentiment.Endpoint,
		cfg.Sentiment.APIKey,
		time.Duration(cfg.Sentiment.TimeoutSec)*time.Second,
	)

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		time.Duration(cfg.LLM.TimeoutSec)*time.Second,
	)

	topicAnalyzer := analyzer.New(store, store, searchClient, classifier, cfg.Twitter.MaxResults)

	dashboardBuilder := dashboard.NewBuilder(
		store,
		llmClient,
		themes.NewExtractor(cfg.Themes.TopN),
		entities.NewExtractor(cfg.Entities.Types, cfg.Entities.TopN),
		dashboardCache,
		time.Duration(cfg.Redis.DashboardTTL)*time.Second,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 30,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	topicHandler := handlers.NewTopicHandler(topicAnalyzer, store, dashboardCache)
	dashboardHandler := handlers.NewDashboardHandler(dashboardBuilder)
	wsHandler := handlers.NewWebSocketHandler(topicAnalyzer, dashboardBuilder, dashboardCache)

	api := app.Group("/api/v1")
	api.Use(rateLimiter.Middleware())
	api.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	api.Post("/topics/analyze", topicHandler.AnalyzeTopic)
	api.Get("/topics", topicHandler.ListTopics)
	api.Get("/topics/:id/tweets", topicHandler.GetTopicTweets)
	api.Get("/topics/:id/dashboard", dashboardHandler.GetDashboard)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.Handler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/analyze", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
