package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application-level configuration
type Config struct {
	// Record store locations: a directory, s3://bucket/prefix, sqlite://path or postgres://...
	InputPath  string
	OutputPath string

	LogLevel string

	// Remote writes
	WriteRetries int
	RetryBackoff time.Duration
	RunTimeout   time.Duration

	// S3
	AWSRegion        string
	S3Endpoint       string // custom endpoint for MinIO / R2, empty for AWS
	S3ForcePathStyle bool
	S3AccessKey      string // static credentials, empty uses the default AWS chain
	S3SecretKey      string

	// Redis mirror of output tables, disabled when RedisAddr is empty
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// Run-completion events, disabled when AMQPURL is empty
	AMQPURL   string
	AMQPQueue string
}

// Load reads an optional .env file, then environment variables with defaults.
// Variables already set in the environment win over .env entries.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		InputPath:        getEnv("INPUT_PATH", "data/input"),
		OutputPath:       getEnv("OUTPUT_PATH", "data/output"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		WriteRetries:     getEnvInt("WRITE_RETRIES", 3),
		RetryBackoff:     time.Duration(getEnvInt("RETRY_BACKOFF_MS", 500)) * time.Millisecond,
		RunTimeout:       time.Duration(getEnvInt("RUN_TIMEOUT_SEC", 600)) * time.Second,
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3ForcePathStyle: getEnvBool("S3_FORCE_PATH_STYLE", false),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix:   getEnv("REDIS_KEY_PREFIX", "cluster-pricing"),
		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPQueue:        getEnv("AMQP_QUEUE", "pricing.insights.ready"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return defaultVal
}
