package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	Environment    string
	AllowedOrigins []string

	FirebaseProject            string
	FirebaseServiceAccountPath string
	FirebaseServiceAccountJSON string

	AttachmentBucket   string
	MaxAttachmentBytes int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LLMAPIURL string
	LLMAPIKey string
	LLMModel  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	InsightsCron           string
	TypingStopDelay        time.Duration
	PaymentSimulationDelay time.Duration

	PromoFeatureCents int64
	PromoBoostCents   int64
	PromoComboCents   int64
	PromoDurationDays int
	TimelineLocation  *time.Location
}

func Load() (*Config, error) {
	godotenv.Load()

	loc, err := time.LoadLocation(getEnv("TIMELINE_TZ", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMELINE_TZ: %w", err)
	}

	config := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),

		AttachmentBucket:   getEnv("ATTACHMENT_BUCKET", "chat-attachments"),
		MaxAttachmentBytes: getEnvAsInt64("MAX_ATTACHMENT_BYTES", 5*1024*1024),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       int(getEnvAsInt64("REDIS_DB", 0)),

		LLMAPIURL: getEnv("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		LLMAPIKey: getEnv("LLM_API_KEY", ""),
		LLMModel:  getEnv("LLM_MODEL", "gpt-4o-mini"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     int(getEnvAsInt64("SMTP_PORT", 587)),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "PartMatch <no-reply@partmatch.app>"),

		InsightsCron:           getEnv("INSIGHTS_CRON", "0 9 * * 1"),
		TypingStopDelay:        getEnvAsDuration("TYPING_STOP_DELAY", time.Second),
		PaymentSimulationDelay: getEnvAsDuration("PAYMENT_SIMULATION_DELAY", 2*time.Second),

		PromoFeatureCents: getEnvAsInt64("PROMO_FEATURE_CENTS", 999),
		PromoBoostCents:   getEnvAsInt64("PROMO_BOOST_CENTS", 499),
		PromoComboCents:   getEnvAsInt64("PROMO_COMBO_CENTS", 1299),
		PromoDurationDays: int(getEnvAsInt64("PROMO_DURATION_DAYS", 7)),
		TimelineLocation:  loc,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.TypingStopDelay < 0 {
		return fmt.Errorf("TYPING_STOP_DELAY must not be negative")
	}
	if c.PaymentSimulationDelay < 0 {
		return fmt.Errorf("PAYMENT_SIMULATION_DELAY must not be negative")
	}
	if c.PromoComboCents <= 0 {
		return fmt.Errorf("PROMO_COMBO_CENTS must be positive")
	}
	if c.MaxAttachmentBytes <= 0 {
		return fmt.Errorf("MAX_ATTACHMENT_BYTES must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
