package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dromero/barberbot/internal/config"
	"github.com/dromero/barberbot/internal/dedup"
	"github.com/dromero/barberbot/internal/gateway/google"
	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/internal/notifier"
	"github.com/dromero/barberbot/internal/repository/postgres"
	authService "github.com/dromero/barberbot/internal/service/auth"
	"github.com/dromero/barberbot/internal/service/reminder"
	"github.com/dromero/barberbot/internal/telegram"
	"github.com/dromero/barberbot/pkg/logger"
	"github.com/dromero/barberbot/pkg/metrics"
	"github.com/dromero/barberbot/pkg/security"
	"github.com/dromero/barberbot/pkg/worker"
)

func setupHealthCheck(log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}

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

	var dedupStore dedup.Store
	if cfg.Scheduler.DedupBackend == "redis" {
		redisStore, err := dedup.NewRedisStore(cfg.Redis.URL, cfg.Scheduler.DedupTTL)
		if err != nil {
			appLogger.Fatal(err, "Failed to connect dedup store to redis")
		}
		defer redisStore.Close()
		dedupStore = redisStore
	} else {
		dedupStore = dedup.NewMemoryStore(cfg.Scheduler.DedupTTL)
	}

	m := metrics.New("barberbot")
	tg := telegram.NewClient(cfg.Telegram, secrets.TelegramToken, appLogger)

	gatewayFactory := func(cred *model.Credential) (reminder.CalendarReader, error) {
		return google.NewService(cfg.Google, cred, m)
	}

	reminderSvc := reminder.NewService(
		cfg.Scheduler,
		authSvc,
		gatewayFactory,
		tg,
		dedupStore,
		ownerRepo,
		appLogger,
		m,
	)
	if cfg.Email.Enabled {
		reminderSvc.WithDigestMailer(notifier.NewSMTPMailer(cfg.Email))
	}

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Shutting down...")
		cancel()
	}()

	loc := cfg.Scheduler.Location()
	runner := worker.NewRunner(appLogger)
	runner.Add("check_reminders", worker.Every(cfg.Scheduler.PollInterval), reminderSvc.CheckReminders)
	runner.Add("daily_summary", worker.DailyAt{
		Hour:     cfg.Scheduler.SummaryHour,
		Minute:   cfg.Scheduler.SummaryMinute,
		Location: loc,
	}, reminderSvc.SendDailySummary)

	runner.Start(ctx)
}
