package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mailagent/internal/config"
	"mailagent/internal/database"
	"mailagent/internal/gmail"
	"mailagent/internal/knowledge"
	"mailagent/internal/models"
	"mailagent/internal/notify"
	"mailagent/internal/openai"
	"mailagent/internal/scheduler"
	"mailagent/internal/server"
	"mailagent/internal/triage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Initialize database connection
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	logger.Info().Msg("Database connection established successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.CreateSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Schema creation failed")
	}

	users := database.NewUserStore(db)
	orders := database.NewOrderStore(db)
	triageStore := database.NewTriageStore(db)

	if err := orders.SeedSampleOrders(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed sample orders")
	}

	assistant, err := openai.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("OpenAI client setup failed")
	}
	logger.Info().Str("provider", assistant.GetProviderName()).Msg("Model provider configured")

	knowledgeStore, err := knowledge.NewStore(cfg, db, assistant)
	if err != nil {
		logger.Fatal().Err(err).Msg("Knowledge store setup failed")
	}
	if err := knowledgeStore.LoadFile(ctx, cfg.KnowledgeFile); err != nil {
		logger.Warn().Err(err).Msg("Knowledge file load failed")
	}

	engine := triage.NewEngine(assistant, knowledgeStore, triageStore, orders, cfg.KnowledgeSearchResults)
	if cfg.SendGridAPIKey != "" {
		engine.SetNotifier(notify.NewService(cfg))
	}

	oauthConf := gmail.NewOAuthConfig(cfg)
	newMailbox := func(ctx context.Context, user *models.User) (triage.Mailbox, error) {
		return gmail.NewMailbox(ctx, oauthConf, user, users)
	}

	sched := scheduler.New(cfg, engine, users, newMailbox)
	go sched.Run(ctx)

	srv := server.New(cfg, db, logger, oauthConf, users, orders, triageStore, knowledgeStore, sched)
	srv.Initialize()

	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
}
