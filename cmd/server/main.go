package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nirmaanhq/chatbot-system/internal/api"
	"github.com/nirmaanhq/chatbot-system/internal/api/handler"
	"github.com/nirmaanhq/chatbot-system/internal/core/service"
	"github.com/nirmaanhq/chatbot-system/internal/infrastructure/db/mongo"
	"github.com/nirmaanhq/chatbot-system/internal/infrastructure/db/redis"
	"github.com/nirmaanhq/chatbot-system/internal/infrastructure/queue"
	"github.com/nirmaanhq/chatbot-system/internal/infrastructure/storage"
	"github.com/nirmaanhq/chatbot-system/internal/infrastructure/whatsapp"
	"github.com/nirmaanhq/chatbot-system/internal/pkg/config"
	"github.com/nirmaanhq/chatbot-system/pkg/logger"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Backing stores.
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	redisClient, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = redisClient.Close() }()

	// Outbound messaging and media.
	waClient := whatsapp.NewClient(whatsapp.Config{
		BaseURL:       cfg.WhatsApp.BaseURL,
		AccessToken:   cfg.WhatsApp.AccessToken,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
	}, log)

	imageStore, err := storage.NewGridFSStore(db, cfg.FilesBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("gridfs initialisation failed")
	}

	// Repositories.
	userRepo := mongo.NewUserRepository(db)
	otpRepo := mongo.NewOTPRepository(db)
	recordRepo := mongo.NewRecordRepository(db)
	siteRepo := mongo.NewSiteRepository(db)
	msgLogRepo := mongo.NewMessageLogRepository(db)
	sessionStore := redis.NewSessionStore(redisClient)

	// Services and flows. All outbound traffic goes through the audited
	// messenger so the message log sees both directions.
	guardTimeout := cfg.GuardTimeout()
	messenger := service.NewAuditedMessenger(waClient, msgLogRepo, guardTimeout, log)
	userSvc := service.NewUserService(userRepo, log)
	// Code delivery stays off the audit trail: the plaintext code must not
	// be persisted anywhere.
	otpSvc := service.NewOTPService(otpRepo, userRepo, waClient, log)
	employeeFlow := service.NewEmployeeFlow(otpSvc, sessionStore, siteRepo, recordRepo, messenger, waClient, imageStore, guardTimeout, log)
	customerFlow := service.NewCustomerFlow(sessionStore, recordRepo, messenger, guardTimeout, log)
	dispatcher := service.NewDispatcher(userSvc, sessionStore, msgLogRepo, messenger, employeeFlow, customerFlow, guardTimeout, log)

	pool := queue.NewWorkerPool(cfg.Workers, dispatcher, log)
	pool.Start(ctx)

	// HTTP surface.
	e := api.NewRouter(api.RouterDeps{
		Webhook:   handler.NewWebhookHandler(pool, cfg.WhatsApp.VerifyToken, cfg.WhatsApp.AppSecret, log),
		Admin:     handler.NewAdminHandler(userSvc, log),
		Health:    handler.NewHealthHandler(mongoClient, redisClient),
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
		os.Exit(1)
	}
}
