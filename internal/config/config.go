package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AnalysisLogPath    string
	AnalysisDir        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ViewStateTTL       time.Duration
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Driver     string // "sqlite" or "postgres"
	Connection string
	Verbose    bool
}

type AIConfig struct {
	LLMProvider      string // "ollama" or "openai"
	LLMModel         string
	OllamaBaseURL    string
	LLMBaseURL       string
	MaxContextTokens int
	Temperature      float64
	RequestTimeout   time.Duration
}

type APIKeys struct {
	LLMAPIKey       string
	AnalysisTopic   string
	ChatEventStream string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AnalysisLogPath:    getEnv("ANALYSIS_LOG_PATH", "logs/analysis.log"),
			AnalysisDir:        getEnv("ANALYSIS_DIR", "analysis"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			ViewStateTTL:       time.Duration(getEnvAsInt("VIEW_STATE_TTL_HOURS", 24*30)) * time.Hour,
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Connection: getEnv("DB_CONNECTION_STRING", "data/offline_chat.db"),
			Verbose:    getEnvAsBool("DB_VERBOSE", false),
		},
		Ai: AIConfig{
			LLMProvider:      getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:         getEnv("LLM_MODEL", "gemma3:4b"),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMBaseURL:       getEnv("LLM_BASE_URL", "http://localhost:8080/v1"),
			MaxContextTokens: getEnvAsInt("MAX_CONTEXT_TOKENS", 32000),
			Temperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			RequestTimeout:   time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 600)) * time.Second,
		},
		Keys: APIKeys{
			LLMAPIKey:       getEnv("LLM_API_KEY", ""),
			AnalysisTopic:   getEnv("ANALYSIS_TOPIC_NAME", "GENERATION_ANALYSIS"),
			ChatEventStream: getEnv("CHAT_EVENT_STREAM", "CHAT_EVENTS"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
