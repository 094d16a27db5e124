package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shacharon/placesearch/internal/app/domain/assistant"
	"github.com/shacharon/placesearch/internal/app/domain/cuisine"
	"github.com/shacharon/placesearch/internal/app/domain/filters"
	"github.com/shacharon/placesearch/internal/app/domain/gate"
	"github.com/shacharon/placesearch/internal/app/domain/intent"
	"github.com/shacharon/placesearch/internal/app/domain/jobstore"
	"github.com/shacharon/placesearch/internal/app/domain/landmark"
	"github.com/shacharon/placesearch/internal/app/domain/orchestrator"
	"github.com/shacharon/placesearch/internal/app/domain/provider"
	"github.com/shacharon/placesearch/internal/app/domain/routemapper"
	"github.com/shacharon/placesearch/internal/app/domain/ticket"
	"github.com/shacharon/placesearch/internal/app/domain/wshub"
	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/pkg/cache"
	"github.com/shacharon/placesearch/internal/pkg/config"
	"github.com/shacharon/placesearch/internal/pkg/logger"
	"github.com/shacharon/placesearch/internal/routes"
	"github.com/shacharon/placesearch/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, continuing with process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Init(zapcore.InfoLevel, zap.String("port", cfg.ServerPort), zap.String("service", "placesearch")); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log := logger.Log
	log.Info("starting placesearch")

	otelShutdown, err := server.InitObservability("placesearch", cfg.MetricsAddr, log)
	if err != nil {
		log.Fatal("failed to initialize observability", zap.Error(err))
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			log.Error("failed to shut down observability", zap.Error(err))
		}
	}()

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize server", zap.Error(err))
	}
	defer srv.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	jobStore := jobstore.NewPGStore(srv.DBPool())
	hub := wshub.New(log)
	tickets := ticket.NewSigner(cfg.Ticket.Secret, cfg.Ticket.TTL, redisClient)

	ctx := context.Background()
	llmClient, err := llm.NewClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model, log)
	if err != nil {
		log.Fatal("failed to initialize llm client", zap.Error(err))
	}

	l2 := cache.NewL2(redisClient, log)
	resultTiered := cache.NewTiered(cache.NewL0(), cache.NewL1(cfg.Cache.L1MaxEntries, cfg.Cache.L1MaxTTL, log), l2, cfg.Cache.L2DefaultTTL, cfg.Cache.L2EmptyTTL, cfg.Cache.SamplingRate, log)
	canonicalTiered := cache.NewTiered(cache.NewL0(), cache.NewL1(cfg.Cache.L1MaxEntries, cfg.Cache.L1MaxTTL, log), l2, cfg.Cache.CanonicalQueryTTL, cfg.Cache.CanonicalQueryTTL, cfg.Cache.SamplingRate, log)
	landmarkResTiered := cache.NewTiered(cache.NewL0(), cache.NewL1(cfg.Cache.L1MaxEntries, cfg.Cache.L1MaxTTL, log), l2, cfg.Cache.LandmarkResTTL, cfg.Cache.LandmarkResTTL, cfg.Cache.SamplingRate, log)
	landmarkSearchTiered := cache.NewTiered(cache.NewL0(), cache.NewL1(cfg.Cache.L1MaxEntries, cfg.Cache.L1MaxTTL, log), l2, cfg.Cache.L2DefaultTTL, cfg.Cache.L2EmptyTTL, cfg.Cache.SamplingRate, log)

	placesClient := provider.NewClient(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Timeout, cfg.Provider.RequestsPerSecond, log)
	landmarkRegistry := landmark.New()

	mapper := routemapper.New(
		routemapper.NewTextSearchMapper(llmClient, placesClient),
		routemapper.NewNearbyMapper(llmClient),
		routemapper.NewLandmarkMapper(llmClient, landmarkRegistry, placesClient),
		routemapper.NewCanonicalizer(llmClient, canonicalTiered),
	)

	orch := orchestrator.New(orchestrator.Deps{
		Store:     jobStore,
		Hub:       hub,
		Gate:      gate.New(llmClient),
		Intent:    intent.New(llmClient),
		Filters:   filters.New(llmClient),
		Mapper:    mapper,
		Provider:  provider.NewStage(placesClient, resultTiered, landmarkResTiered, landmarkSearchTiered),
		Cuisine:   cuisine.New(llmClient),
		Assistant: assistant.New(llmClient),
		Config:    cfg,
		Logger:    log,
	})

	router := server.SetupRouter(server.RouterDeps{
		DBPool: srv.DBPool(),
		Logger: log,
		Routes: routes.Deps{
			Orchestrator: orch,
			Store:        jobStore,
			Hub:          hub,
			Tickets:      tickets,
			Config:       cfg,
			Logger:       log,
		},
	})

	server.StartPprofServer(":" + cfg.PprofPort)

	srv.SetRouter(router)
	httpServer := srv.HTTPServer()

	done := make(chan bool, 1)
	go server.GracefulShutdown(httpServer, log, done)

	log.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := httpServer.ListenAndServe(); err != nil && err.Error() != "http: Server closed" {
		log.Fatal("failed to start server", zap.Error(err))
	}

	<-done
	log.Info("server exited")
}
