// Package config loads service configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LLM provider identifiers.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// LLM generation backend
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Embeddings
	EmbedProvider  string
	EmbedModel     string
	EmbedDimension int

	// Retrieval index
	IndexDir     string
	ChunkSize    int
	ChunkOverlap int
	RetrievalK   int

	// Orchestrator
	HistoryWindow int

	// Knowledge gateway
	GatewayTimeoutSeconds int
	GitHubToken           string
	SourcesFile           string

	// HTTP server
	ServerPort string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables with defaults that
// work against a local Ollama and SurrealDB.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "campusmind"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "chat"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     getEnv("CAMPUSMIND_LLM_PROVIDER", ProviderOllama),
		LLMModel:        getEnv("CAMPUSMIND_LLM_MODEL", "mistral"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		EmbedProvider:  getEnv("CAMPUSMIND_EMBED_PROVIDER", ProviderOllama),
		EmbedModel:     getEnv("CAMPUSMIND_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("CAMPUSMIND_EMBED_DIMENSION", 384),

		IndexDir:     getEnv("CAMPUSMIND_INDEX_DIR", "data/index"),
		ChunkSize:    getEnvInt("CAMPUSMIND_CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CAMPUSMIND_CHUNK_OVERLAP", 150),
		RetrievalK:   getEnvInt("CAMPUSMIND_RETRIEVAL_K", 3),

		HistoryWindow: getEnvInt("CAMPUSMIND_HISTORY_WINDOW", 10),

		GatewayTimeoutSeconds: getEnvInt("CAMPUSMIND_GATEWAY_TIMEOUT", 15),
		GitHubToken:           getEnv("GITHUB_TOKEN", ""),
		SourcesFile:           getEnv("CAMPUSMIND_SOURCES_FILE", "sources.yaml"),

		ServerPort: getEnv("CAMPUSMIND_PORT", "8080"),

		LogFile:  getEnv("CAMPUSMIND_LOG_FILE", "/tmp/campusmind.log"),
		LogLevel: parseLogLevel(getEnv("CAMPUSMIND_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
