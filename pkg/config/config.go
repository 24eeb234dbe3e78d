package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	FirebaseProject            string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string
	StorageBucket              string

	StoreDriver string // firestore | postgres | sqlite
	DatabaseURL string

	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiEmbedModel string

	AITimeout     time.Duration
	UploadTimeout time.Duration
	FanoutTimeout time.Duration

	DuplicateRadiusMeters float64
	DuplicateThreshold    float64

	AMQPURL      string
	AMQPExchange string
	FCMEnabled   bool

	MaxUploadMB        int64
	RateLimitPerMinute int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "./firebase-service-account.json"),
		StorageBucket:              getEnv("STORAGE_BUCKET", "report-media"),

		StoreDriver: getEnv("STORE_DRIVER", "firestore"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-1.5-flash"),
		GeminiEmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),

		AITimeout:     getEnvAsDuration("AI_TIMEOUT", 8*time.Second),
		UploadTimeout: getEnvAsDuration("UPLOAD_TIMEOUT", 30*time.Second),
		FanoutTimeout: getEnvAsDuration("FANOUT_TIMEOUT", 20*time.Second),

		DuplicateRadiusMeters: getEnvAsFloat("DUPLICATE_RADIUS_METERS", 50),
		DuplicateThreshold:    getEnvAsFloat("DUPLICATE_THRESHOLD", 0.9),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "civiq"),
		FCMEnabled:   getEnvAsBool("FCM_ENABLED", false),

		MaxUploadMB:        getEnvAsInt64("MAX_UPLOAD_MB", 10),
		RateLimitPerMinute: int(getEnvAsInt64("RATE_LIMIT_PER_MINUTE", 10)),
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("8s") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
