// Package app assembles the dependency graph: infrastructure clients first,
// then repositories, then the services that use them.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/imovia/imovia-go/internal/config"
	"github.com/imovia/imovia-go/internal/prompt"
	"github.com/imovia/imovia-go/internal/server"
	"github.com/imovia/imovia-go/internal/service/ai"
	"github.com/imovia/imovia-go/internal/service/chat"
	"github.com/imovia/imovia-go/internal/service/database"
	"github.com/imovia/imovia-go/internal/service/lead"
	"github.com/imovia/imovia-go/internal/service/pipeline"
	"github.com/imovia/imovia-go/internal/service/scraper"
	"github.com/imovia/imovia-go/internal/service/storage"
	"github.com/imovia/imovia-go/internal/settings"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds the assembled runtime components and owns the shutdown
// order of their underlying connections.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Server *server.Server
	Worker *pipeline.Worker

	closers []func()
}

// Close releases infrastructure connections in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all services. Heavy initialization (DB, Redis, S3) happens
// here so the entry point stays focused on lifecycle.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	closers = append(closers, func() {
		_ = redisClient.Close()
	})

	// Runtime configuration and prompts
	settingsRepo := database.NewSettingsRepo(postgresSvc, logger)
	resolver := settings.NewResolver(settingsRepo, logger)
	prompts := prompt.NewRegistry(resolver)

	gateway := ai.NewGateway(resolver, prompts, logger)

	// Cloning pipeline
	scraperSvc := scraper.NewService(cfg.Scraper.UserAgent, logger)

	objectStore, err := storage.NewS3Store(ctx, storage.S3Config{
		Endpoint:      cfg.Storage.Endpoint,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store: %w", err)
	}
	rehoster := storage.NewRehoster(objectStore, logger)

	jobRepo := database.NewJobRepo(postgresSvc, logger)
	pageRepo := database.NewPageRepo(postgresSvc, logger)
	leadRepo := database.NewLeadRepo(postgresSvc, logger)

	pipe := pipeline.NewPipeline(scraperSvc, gateway, rehoster, jobRepo, pageRepo, resolver, logger)
	worker := pipeline.NewWorker(
		pipe,
		jobRepo,
		time.Duration(cfg.Worker.PollIntervalSeconds)*time.Second,
		cfg.Worker.MaxParallelJobs,
		logger,
	)

	// Chat and lead capture
	notifyTo := resolver.Get(ctx, "lead_notification_phone")
	capturer := lead.NewCapturer(gateway, leadRepo, nil, notifyTo, logger)

	conversations := chat.NewConversationStore(redisClient, logger)
	chatSvc := chat.NewService(gateway, conversations, capturer, prompts, logger)

	httpServer := server.New(chatSvc, jobRepo, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Server:  httpServer,
		Worker:  worker,
		closers: closers,
	}, nil
}
