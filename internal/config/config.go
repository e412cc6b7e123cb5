package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Port        string
	DatabaseURL string
	Version     string
	LogLevel    string

	// Google OAuth / Gmail
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// OpenAI (Azure primary, platform fallback)
	OpenAIKey                      string
	AzureOpenAIKey                 string
	AzureOpenAIEndpoint            string
	AzureOpenAIGPTDeployment       string
	AzureOpenAIEmbeddingDeployment string
	OpenAITimeout                  int // OpenAI API timeout in seconds

	// Qdrant vector store
	QdrantHost       string
	QdrantPort       int
	QdrantCollection string

	// Knowledge ingestion
	KnowledgeFile      string
	KnowledgeChunkSize int

	// Scheduler
	PollIntervalSeconds    int // delay between processing passes
	ErrorBackoffSeconds    int // delay after a systemic failure
	MaxMessagesPerUser     int // cap on unread messages fetched per pass
	KnowledgeSearchResults int // top-N chunks retrieved per question

	// SendGrid escalation notifications
	SendGridAPIKey string
	SupportEmail   string
	FromEmail      string
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Version:     getEnv("VERSION", "1.0.0"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/callback"),

		OpenAIKey:                      os.Getenv("OPENAI_API_KEY"),
		AzureOpenAIKey:                 os.Getenv("AZURE_OPENAI_KEY"),
		AzureOpenAIEndpoint:            os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIGPTDeployment:       getEnv("AZURE_OPENAI_GPT_DEPLOYMENT", "gpt-4o-mini"),
		AzureOpenAIEmbeddingDeployment: getEnv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT", "text-embedding-3-small"),
		OpenAITimeout:                  getEnvInt("OPENAI_TIMEOUT", 60),

		QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:       getEnvInt("QDRANT_PORT", 6334),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "knowledge_base"),

		KnowledgeFile:      getEnv("KNOWLEDGE_FILE", "knowledge_base/sample_knowledge.txt"),
		KnowledgeChunkSize: getEnvInt("KNOWLEDGE_CHUNK_SIZE", 500),

		PollIntervalSeconds:    getEnvInt("POLL_INTERVAL_SECONDS", 30),
		ErrorBackoffSeconds:    getEnvInt("ERROR_BACKOFF_SECONDS", 60),
		MaxMessagesPerUser:     getEnvInt("MAX_MESSAGES_PER_USER", 10),
		KnowledgeSearchResults: getEnvInt("KNOWLEDGE_SEARCH_RESULTS", 3),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		SupportEmail:   getEnv("SUPPORT_EMAIL", "support@example.com"),
		FromEmail:      getEnv("FROM_EMAIL", "noreply@example.com"),
	}

	return config
}

// UseAzureOpenAI reports whether Azure OpenAI is configured as the primary provider
func (c *Config) UseAzureOpenAI() bool {
	return c.AzureOpenAIKey != "" && c.AzureOpenAIEndpoint != ""
}

// HasOpenAIFallback reports whether the OpenAI platform key is available
func (c *Config) HasOpenAIFallback() bool {
	return c.OpenAIKey != ""
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "mailagent").
		Str("version", c.Version).
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}
