// Command load-knowledge ingests a knowledge text file into the
// vector store without starting the server.
package main

import (
	"context"
	"os"

	"mailagent/internal/config"
	"mailagent/internal/database"
	"mailagent/internal/knowledge"
	"mailagent/internal/openai"
)

func main() {
	cfg := config.Load()
	logger := cfg.SetupLogger()

	path := cfg.KnowledgeFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}

	ctx := context.Background()
	if err := database.CreateSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Schema creation failed")
	}

	assistant, err := openai.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("OpenAI client setup failed")
	}

	store, err := knowledge.NewStore(cfg, db, assistant)
	if err != nil {
		logger.Fatal().Err(err).Msg("Knowledge store setup failed")
	}

	if err := store.LoadFile(ctx, path); err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("Knowledge load failed")
	}

	count, err := store.Count(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to count knowledge vectors")
		return
	}
	logger.Info().Uint64("chunks", count).Msg("Knowledge base ready")
}
