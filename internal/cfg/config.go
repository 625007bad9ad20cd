package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxUploadBytes matches the editor-side limit of 16 MiB.
const DefaultMaxUploadBytes = 16 * 1024 * 1024

const (
	StorageDisk  = "disk"
	StorageMinio = "minio"

	MetadataMemory   = "memory"
	MetadataMongo    = "mongo"
	MetadataPostgres = "postgres"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string
	LogFile  string

	MaxUploadBytes int64
	StorageBackend string
	UploadDir      string
	MediaURLPrefix string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	MetadataBackend string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	PostgresDSN     string

	JWTSecret     string
	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	AllowedCORSOrigins  []string
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
	ShutdownGracePeriod time.Duration
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env not found, using environment variables")
	}

	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPPort: getEnv("HTTP_PORT", "8082"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_SIZE", DefaultMaxUploadBytes),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageDisk)),
		UploadDir:      getEnv("UPLOAD_DIR", "static/uploads"),
		MediaURLPrefix: strings.TrimRight(getEnv("MEDIA_URL_PREFIX", "/static/uploads"), "/"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL"),
		MinioBucket:    getEnv("MINIO_BUCKET", "wiki-media"),

		MetadataBackend: strings.ToLower(getEnv("METADATA_BACKEND", MetadataMemory)),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "wiki"),
		MongoCollection: getEnv("MONGODB_COLLECTION", "wiki_media"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers: parseCSVEnv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "media.uploaded"),
		KafkaGroupID: os.Getenv("KAFKA_GROUP_ID"),

		AllowedCORSOrigins:  parseCSVEnv("ALLOWED_ORIGINS"),
		RateLimitRequests:   getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:     getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		ReadTimeout:         getEnvDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:         getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownGracePeriod: getEnvDuration("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.MediaURLPrefix == "" || !strings.HasPrefix(c.MediaURLPrefix, "/") || c.MediaURLPrefix == "/media" {
		return fmt.Errorf("MEDIA_URL_PREFIX must be an absolute path other than /media")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	switch c.StorageBackend {
	case StorageDisk:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for disk storage")
		}
	case StorageMinio:
		if c.MinioEndpoint == "" || c.MinioBucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required for minio storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.MetadataBackend {
	case MetadataMemory:
	case MetadataMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for mongo metadata")
		}
	case MetadataPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for postgres metadata")
		}
	default:
		return fmt.Errorf("unknown METADATA_BACKEND %q", c.MetadataBackend)
	}

	if c.KafkaGroupID != "" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_GROUP_ID requires KAFKA_BROKERS")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string) bool {
	val := strings.TrimSpace(os.Getenv(key))
	return val == "true" || val == "1"
}

func getEnvInt(key string, fallback int) int {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseCSVEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
