package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	Environment    string
	// OpenAI
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	LLMTimeout    time.Duration
	// Conversation tuning
	PromptsFile          string
	HistoryWindow        int
	FollowUpThreshold    float64
	FollowUpMaxQuestions int
	ClassifyCacheTTL     time.Duration
	// Session eviction
	SessionMaxAge          time.Duration
	SessionCleanupInterval time.Duration
	// Logging
	LogLevel    string
	LogFilePath string
	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

// Defaults for the conversation tuning keys. Kept in sync with the
// constants in internal/travel.
const (
	defaultHistoryWindow        = 6
	defaultFollowUpThreshold    = 0.7
	defaultFollowUpMaxQuestions = 2
)

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:                   getEnvDefault("PORT", "8000"),
		AllowedOrigins:         getEnvListDefault("ALLOWED_ORIGINS", []string{"*"}),
		Environment:            getEnvDefault("GO_ENV", "development"),
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:          os.Getenv("OPENAI_BASE_URL"),
		Model:                  getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:             getEnvDurationDefault("LLM_TIMEOUT", 60*time.Second),
		PromptsFile:            os.Getenv("PROMPTS_FILE"),
		HistoryWindow:          getEnvIntDefault("HISTORY_WINDOW", defaultHistoryWindow),
		FollowUpThreshold:      getEnvFloatDefault("FOLLOWUP_THRESHOLD", defaultFollowUpThreshold),
		FollowUpMaxQuestions:   getEnvIntDefault("FOLLOWUP_MAX_QUESTIONS", defaultFollowUpMaxQuestions),
		ClassifyCacheTTL:       getEnvDurationDefault("CLASSIFY_CACHE_TTL", 10*time.Minute),
		SessionMaxAge:          getEnvDurationDefault("SESSION_MAX_AGE", 24*time.Hour),
		SessionCleanupInterval: getEnvDurationDefault("SESSION_CLEANUP_INTERVAL", time.Hour),
		LogLevel:               getEnvDefault("LOG_LEVEL", "info"),
		LogFilePath:            os.Getenv("LOG_FILE_PATH"),
		TracingEnabled:         getEnvBoolDefault("OTEL_ENABLED", false),
		OTLPEndpoint:           getEnvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; API calls will fail until provided")
	}
	return cfg
}

// IsProduction reports whether GO_ENV selects production output.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("warning: %s=%q is not an integer, using %d", key, v, def)
	}
	return def
}

func getEnvFloatDefault(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("warning: %s=%q is not a number, using %v", key, v, def)
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("warning: %s=%q is not a duration, using %s", key, v, def)
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}
