package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	apiHttp "github.com/tokenvault/backend/internal/api/http"
	"github.com/tokenvault/backend/internal/cache"
	"github.com/tokenvault/backend/internal/config"
	"github.com/tokenvault/backend/internal/db"
	"github.com/tokenvault/backend/internal/queue/asynqserver"
	queueClient "github.com/tokenvault/backend/internal/queue/client"
	"github.com/tokenvault/backend/internal/repository"
	"github.com/tokenvault/backend/internal/server"
	"github.com/tokenvault/backend/internal/service"
	"github.com/tokenvault/backend/internal/settlement"
	"github.com/tokenvault/backend/internal/worker"
	"github.com/tokenvault/backend/pkg/auth"
	"github.com/tokenvault/backend/pkg/email/smtp"
	"github.com/tokenvault/backend/pkg/logger"
	"github.com/tokenvault/backend/pkg/otp"

	"github.com/hibiken/asynq"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	// Dependencies
	appLogger := logger.SetupLogger(cfg.Env)

	appLogger.Info("starting escrow backend", zap.String("env", cfg.Env))

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		appLogger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			appLogger.Error("error when closing", zap.Error(err))
		}
	}()
	appLogger.Info("mysql connection done")

	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		appLogger.Error("redis connect problem", zap.Error(err))
		os.Exit(1)
	}

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		appLogger.Error("smtp sender creation failed", zap.Error(err))
		return
	}

	tokenManager, err := auth.NewManager(cfg.Auth.JWT.SigningKey)
	if err != nil {
		appLogger.Error("auth manager creation err", zap.Error(err))
		return
	}

	otpGenerator := otp.NewGOTPGenerator()

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Config:       cfg,
		TokenManager: tokenManager,
		OtpGenerator: otpGenerator,
		Repos:        repos,
	})
	handlers := apiHttp.NewHandlers(services, cfg)

	// Background workers over asynq
	workers := worker.NewWorkers(worker.Deps{
		Redis:         redisClient,
		Repos:         repos,
		EmailProvider: emailSender,
		Simulator:     settlement.NewSimulator(),
		Config:        cfg,
	})

	asynqClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	restoreClient := queueClient.SetClient(asynqClient)
	defer func() {
		restoreClient()
		if err := asynqClient.Close(); err != nil {
			appLogger.Error("error when closing asynq client", zap.Error(err))
		}
	}()

	asynqSrv, asynqMux := asynqserver.New(cfg.Cache, workers)
	go func() {
		if err := asynqSrv.Run(asynqMux); err != nil {
			appLogger.Error("asynq server stopped with error", zap.Error(err))
		}
	}()

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	appLogger.Info("server started")

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	asynqSrv.Shutdown()

	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("failed to stop server", zap.Error(err))
	}

	appLogger.Info("app stopped")
}
