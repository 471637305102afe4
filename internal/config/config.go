package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the grading service.
type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	// Database
	DatabaseURL string

	// Redis (optional, caching is disabled when empty)
	RedisURL string

	// Kafka (optional, events are logged locally when empty)
	KafkaBrokers []string
	KafkaTopic   string

	// Gemini
	Gemini GeminiConfig

	// Pipeline
	Pipeline PipelineConfig
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type PipelineConfig struct {
	UploadDir string

	// Rasterization
	OCRDPI     int
	DiagramDPI int

	// Diagram heuristic
	BinaryThreshold uint8
	MinDiagramArea  int
	MaxDiagramArea  int
}

// LoadConfig reads configuration from the environment, with an optional .env
// file for local development.
func LoadConfig() (*Config, error) {
	// Missing .env is fine in production; env vars take precedence anyway.
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "grading.events"),
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Pipeline: PipelineConfig{
			UploadDir:       getEnv("UPLOAD_DIR", "data/uploads"),
			OCRDPI:          getEnvInt("OCR_DPI", 150),
			DiagramDPI:      getEnvInt("DIAGRAM_DPI", 200),
			BinaryThreshold: uint8(getEnvInt("DIAGRAM_BINARY_THRESHOLD", 200)),
			MinDiagramArea:  getEnvInt("DIAGRAM_MIN_AREA", 10000),
			MaxDiagramArea:  getEnvInt("DIAGRAM_MAX_AREA", 500000),
		},
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.Pipeline.OCRDPI <= 0 || cfg.Pipeline.DiagramDPI <= 0 {
		return nil, fmt.Errorf("render DPI values must be positive")
	}
	if cfg.Pipeline.MinDiagramArea >= cfg.Pipeline.MaxDiagramArea {
		return nil, fmt.Errorf("DIAGRAM_MIN_AREA must be below DIAGRAM_MAX_AREA")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
