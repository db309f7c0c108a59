package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photolock/api/internal/attachments"
	"photolock/api/internal/cache"
	"photolock/api/internal/config"
	"photolock/api/internal/convert"
	"photolock/api/internal/database"
	"photolock/api/internal/fetcher"
	"photolock/api/internal/gallery"
	"photolock/api/internal/handlers"
	"photolock/api/internal/ingest"
	"photolock/api/internal/jobs"
	"photolock/api/internal/log"
	"photolock/api/internal/repository"
	"photolock/api/internal/server"
	"photolock/api/internal/service"
	"photolock/api/internal/storage"
	"photolock/api/internal/verify"
)

const previewBasePath = "/api/v1/previews"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsurePostsBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure posts bucket failed")
	}

	converter, err := convert.NewLambdaConverter(ctx, cfg.Convert)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init converter")
	}

	urlCache := storage.NewSignedURLCache(objectStore.PresignGet, cfg.Gallery.SignedURLTTL)
	blobFetcher := fetcher.New(urlCache)
	verifier := verify.NewClient(cfg.Verify.Endpoint, log.Component(logger, "verify"))
	pipeline := ingest.NewPipeline(blobFetcher, verifier, converter, log.Component(logger, "ingest"))

	previewRegistry := attachments.NewPreviewRegistry(previewBasePath, cfg.Security.ResourceSecret)

	userRepo := repository.NewUserRepository(dbPool)
	sessionRepo := repository.NewSessionRepository(dbPool)
	postRepo := repository.NewPostRepository(dbPool)

	authService := service.NewAuthService(userRepo, sessionRepo, cfg, log.Component(logger, "auth"))
	draftService := service.NewDraftService(previewRegistry, pipeline, log.Component(logger, "drafts"))
	postService := service.NewPostService(postRepo, objectStore, urlCache, redisClient, cfg.Redis.Stream, log.Component(logger, "posts"))
	galleryService := gallery.NewService(objectStore, urlCache, cfg.Gallery.RefreshInterval, log.Component(logger, "gallery"))

	handlerSet := handlers.NewHandlerSet(handlers.Deps{
		Log:      logger,
		Cfg:      cfg,
		Auth:     authService,
		Drafts:   draftService,
		Posts:    postService,
		Gallery:  galleryService,
		Previews: previewRegistry,
		DB:       dbPool,
		Cache:    redisClient,
		Users:    userRepo,
		Sessions: sessionRepo,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(redisClient, cfg.Redis.Stream, urlCache, cfg.Gallery.CacheSweepSpec, log.Component(logger, "jobs"))
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
