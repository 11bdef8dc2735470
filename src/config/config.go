package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	LogLevel           string
	TracingEnabled     bool
	MaxUploadSizeBytes int64
	RequestTimeout     time.Duration
	AllowedOrigins     []string

	// Path to a YAML (or JSON) pipeline file. Empty means DefaultPipelineConfig.
	PipelineConfigPath string
	ResultCacheTTL     time.Duration

	// Query route limiter: sustained requests per minute and burst size.
	QueryRatePerMinute int
	QueryRateBurst     int

	GeminiAPIKey string
	GeminiModel  string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	geminiAPIKey := getEnv("GEMINI_API_KEY", "")
	if geminiAPIKey == "" {
		log.Println("WARNING: GEMINI_API_KEY is not set. The query endpoint will report the assistant as unavailable.")
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		TracingEnabled:     getEnvAsBool("TRACING_ENABLED", false),
		MaxUploadSizeBytes: maxUploadSizeBytes,
		RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		PipelineConfigPath: getEnv("PIPELINE_CONFIG_PATH", ""),
		ResultCacheTTL:     getEnvAsDuration("RESULT_CACHE_TTL", 15*time.Minute),

		QueryRatePerMinute: getEnvAsInt("QUERY_RATE_LIMIT_PER_MINUTE", 10),
		QueryRateBurst:     getEnvAsInt("QUERY_RATE_BURST", 3),

		GeminiAPIKey: geminiAPIKey,
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, PipelineConfig=%q, Tracing=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.PipelineConfigPath, Cfg.TracingEnabled)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
