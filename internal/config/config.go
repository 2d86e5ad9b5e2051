package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const envFile = "./config/.env"

// Session store backends.
const (
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Client configures the sace command line client.
type Client struct {
	APIBaseURL      string        `env:"SACE_API_BASE_URL" env-default:"http://localhost:8080"`
	SessionStore    string        `env:"SACE_SESSION_STORE" env-default:"bolt"`
	SessionFile     string        `env:"SACE_SESSION_FILE"`
	RedisURL        string        `env:"SACE_REDIS_URL" env-default:"redis://localhost:6379/0"`
	SessionPrefix   string        `env:"SACE_SESSION_KEY_PREFIX" env-default:"sace:"`
	HTTPTimeout     time.Duration `env:"SACE_HTTP_TIMEOUT" env-default:"30s"`
	RefreshInterval time.Duration `env:"SACE_REFRESH_INTERVAL" env-default:"10s"`
	ReadRetries     int           `env:"SACE_READ_RETRIES" env-default:"1"`
	MaxUploadBytes  int64         `env:"SACE_MAX_UPLOAD_BYTES" env-default:"10485760"`
	Debug           bool          `env:"SACE_DEBUG" env-default:"false"`
}

// Server configures the development backend.
type Server struct {
	HTTPPort           int           `env:"HTTP_PORT" env-default:"8080"`
	JWTSecret          string        `env:"JWT_SECRET" env-required:"true"`
	JWTTTL             time.Duration `env:"JWT_TTL" env-default:"24h"`
	AllowedOrigins     []string      `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
	DBPath             string        `env:"DB_PATH" env-default:"./data/sace.db"`
	KafkaBrokers       []string      `env:"KAFKA_BROKERS" env-separator:","`
	KafkaReviewTopic   string        `env:"KAFKA_REVIEW_TOPIC" env-default:"submission-reviews"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" env-default:"100"`
	MaxUploadBytes     int64         `env:"MAX_UPLOAD_BYTES" env-default:"10485760"`
	SignupRole         string        `env:"SIGNUP_ROLE" env-default:"USER"`
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	SeedEmail          string        `env:"SEED_INSTRUCTOR_EMAIL"`
	SeedPassword       string        `env:"SEED_INSTRUCTOR_PASSWORD"`
	Debug              bool          `env:"DEBUG" env-default:"false"`
}

// Notifier configures the review event consumer.
type Notifier struct {
	KafkaBrokers     []string `env:"KAFKA_BROKERS" env-separator:"," env-required:"true"`
	KafkaReviewTopic string   `env:"KAFKA_REVIEW_TOPIC" env-default:"submission-reviews"`
	KafkaGroupID     string   `env:"KAFKA_GROUP_ID" env-default:"sace-notifier"`
	Debug            bool     `env:"DEBUG" env-default:"false"`
}

func NewClient() (*Client, error) {
	var cfg Client
	if err := read(&cfg); err != nil {
		return nil, err
	}
	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.SessionFile = filepath.Join(home, ".sace", "session.db")
	}
	if cfg.ReadRetries < 1 {
		cfg.ReadRetries = 1
	}
	return &cfg, nil
}

func NewServer() (*Server, error) {
	var cfg Server
	if err := read(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func NewNotifier() (*Notifier, error) {
	var cfg Notifier
	if err := read(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func read(cfg any) error {
	if err := cleanenv.ReadConfig(envFile, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cleanenv.ReadEnv(cfg)
		}
		return err
	}
	return nil
}
