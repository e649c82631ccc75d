package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dromero/barberbot/internal/bot"
	"github.com/dromero/barberbot/internal/config"
	"github.com/dromero/barberbot/internal/handler"
	oauthHandler "github.com/dromero/barberbot/internal/handler/oauth"
	ownerHandler "github.com/dromero/barberbot/internal/handler/owner"
	"github.com/dromero/barberbot/internal/repository/postgres"
	"github.com/dromero/barberbot/internal/router"
	authService "github.com/dromero/barberbot/internal/service/auth"
	"github.com/dromero/barberbot/internal/telegram"
	"github.com/dromero/barberbot/pkg/logger"
	"github.com/dromero/barberbot/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load secrets")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	appLogger := &logger.Logger{ZL: log.Logger}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	encryptor, err := security.NewAESEncryptorFromPassphrase(secrets.CredentialsKey)
	if err != nil {
		appLogger.Fatal(err, "Failed to initialize credential encryption")
	}

	baseRepo := postgres.NewBaseRepository(db)
	ownerRepo := postgres.NewOwnerRepository(baseRepo)
	credRepo := postgres.NewCredentialRepository(baseRepo, encryptor)

	authSvc := authService.NewService(ownerRepo, credRepo, cfg.Google, secrets, appLogger)
	tg := telegram.NewClient(cfg.Telegram, secrets.TelegramToken, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chatBot := bot.New(tg, ownerRepo, authSvc, cfg.Telegram.PollTimeout, appLogger)
	go chatBot.Run(ctx)

	h := handler.NewHandler()
	oauthH := oauthHandler.NewHandler(authSvc, appLogger)
	ownerH := ownerHandler.NewHandler(ownerRepo)

	r := router.NewRouter(h, oauthH, ownerH, router.Config{})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "Server shutdown failed")
	}
}
