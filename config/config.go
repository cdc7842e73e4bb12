package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDynamo = "dynamodb"
	StoreMemory = "memory"
)

var ErrMissingConfig = errors.New("missing config data")

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Catalog store
	StoreDriver    string
	TableName      string
	ConsistentRead bool
	StoreTimeout   time.Duration

	// Auth
	JWTSecret string

	// AWS
	AWSRegion   string
	AWSEndpoint string
	SQSQueueURL string

	// Observability
	MetricsPort string

	// Cache
	CacheTaxonomyTTL time.Duration

	// Rate limiting (per client IP)
	RateLimitRPS   float64
	RateLimitBurst int

	// Pagination
	DefaultPageLimit int
	MaxPageLimit     int
}

// LoadConfig reads CONFIG_FILE (or .env) into the environment and builds the
// configuration record handed to every component at startup.
func LoadConfig() (*Config, error) {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreDynamo)),
		TableName:      getEnv("TABLE_NAME", ""),
		ConsistentRead: getBoolEnv("DYNAMODB_CONSISTENT_READ", false),
		StoreTimeout:   getDurationEnv("STORE_TIMEOUT", 5*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint: getEnv("AWS_ENDPOINT", ""),
		SQSQueueURL: getEnv("SQS_QUEUE_URL", ""),

		MetricsPort: getEnv("METRICS_PORT", "9090"),

		CacheTaxonomyTTL: getDurationEnv("CACHE_TAXONOMY_TTL", time.Hour),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		DefaultPageLimit: getIntEnv("DEFAULT_PAGE_LIMIT", 20),
		MaxPageLimit:     getIntEnv("MAX_PAGE_LIMIT", 100),
	}
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrMissingConfig)
	}
	switch c.StoreDriver {
	case StoreDynamo:
		if c.TableName == "" {
			return fmt.Errorf("%w: TABLE_NAME is required for the dynamodb store", ErrMissingConfig)
		}
	case StoreMemory:
		log.Println("WARNING: Using the in-memory catalog store. Data is lost on restart.")
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (expected %s or %s)", c.StoreDriver, StoreDynamo, StoreMemory)
	}
	if c.DefaultPageLimit < 1 || c.MaxPageLimit < c.DefaultPageLimit {
		return fmt.Errorf("invalid page limits: default=%d max=%d", c.DefaultPageLimit, c.MaxPageLimit)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}
