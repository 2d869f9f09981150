package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	FrontendURL string
	// Auth (delegated session provider)
	SupabaseUrl       string
	SupabaseJWTSecret string
	// Key-value store
	RedisURL      string
	RedisPassword string
	// Blob store: "supabase" (storage REST) or "s3"
	StorageProvider string
	StorageBucket   string
	SupabaseKey     string
	S3Region        string
	S3AccessKeyID   string
	S3SecretKey     string
	S3Endpoint      string
	// Primary AI provider: "openrouter", "gemini" or "" (disabled)
	PrimaryProvider   string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	GeminiAPIKey      string
	GeminiModel       string
	// Secondary AI provider (local model endpoint)
	OllamaURL         string
	OllamaModel       string
	OllamaTemperature float64
	// Bounded wait for provider readiness at startup
	ProviderReadySeconds int
	// Rate limiting for the analyze endpoint
	RateLimitWindowSeconds   int
	RateLimitSubmitThreshold int
	// Preview image bounds
	PreviewMaxDimension int
	PreviewJPEGQuality  int
}

func LoadConfig() (*Config, error) {
	// Only effective locally; ignored in production when the file is absent.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		StorageProvider: getEnv("STORAGE_PROVIDER", "supabase"),
		StorageBucket:   getEnv("STORAGE_BUCKET", "resumes"),
		SupabaseKey:     getEnv("SUPABASE_SERVICE_KEY", getEnv("SUPABASE_KEY", "")),
		S3Region:        getEnv("S3_REGION", ""),
		S3AccessKeyID:   getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),

		PrimaryProvider:   getEnv("PRIMARY_AI_PROVIDER", "openrouter"),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "anthropic/claude-3.5-sonnet"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		OllamaURL:         strings.TrimRight(getEnv("OLLAMA_URL", "http://localhost:11434"), "/"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3.1"),
		OllamaTemperature: getEnvFloat("OLLAMA_TEMPERATURE", 0.2),

		ProviderReadySeconds: getEnvInt("PROVIDER_READY_SECONDS", 5),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitSubmitThreshold: getEnvInt("RATE_LIMIT_SUBMIT_THRESHOLD", 5),

		PreviewMaxDimension: getEnvInt("PREVIEW_MAX_DIMENSION", 1200),
		PreviewJPEGQuality:  getEnvInt("PREVIEW_JPEG_QUALITY", 80),
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL is missing. Persistence will be unavailable.")
	}
	if cfg.OpenRouterAPIKey == "" && cfg.GeminiAPIKey == "" {
		log.Println("WARNING: no primary AI provider configured. All analyses will use the local fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
