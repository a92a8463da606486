package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	MinIO     MinIOConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Enabled   bool
}

type JWTConfig struct {
	Secret string
	Expire time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

var (
	config *Config
	once   sync.Once
)

// Load reads configuration from environment variables, falling back to
// development defaults. Safe to call from multiple goroutines; the first
// call wins.
func Load() *Config {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.SetDefault("PORT", "8080")
		viper.SetDefault("ENVIRONMENT", "development")
		viper.SetDefault("SHUTDOWN_TIMEOUT", "15s")

		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "collab")
		viper.SetDefault("DB_SSLMODE", "disable")

		viper.SetDefault("REDIS_HOST", "localhost")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
		viper.SetDefault("REDIS_READ_TIMEOUT", "3s")
		viper.SetDefault("REDIS_WRITE_TIMEOUT", "3s")
		viper.SetDefault("REDIS_POOL_SIZE", 10)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)

		viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
		viper.SetDefault("KAFKA_TOPIC", "collab-events")
		viper.SetDefault("KAFKA_ENABLED", false)

		viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
		viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
		viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
		viper.SetDefault("MINIO_BUCKET", "collab-uploads")
		viper.SetDefault("MINIO_USE_SSL", false)
		viper.SetDefault("MINIO_ENABLED", false)

		viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
		viper.SetDefault("JWT_EXPIRE", "24h")

		viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
		viper.SetDefault("RATE_LIMIT_WINDOW", "1m")

		config = &Config{
			Server: ServerConfig{
				Port:            viper.GetString("PORT"),
				Environment:     viper.GetString("ENVIRONMENT"),
				ShutdownTimeout: viper.GetDuration("SHUTDOWN_TIMEOUT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				Name:     viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Redis: RedisConfig{
				Host:         viper.GetString("REDIS_HOST"),
				Port:         viper.GetString("REDIS_PORT"),
				Password:     viper.GetString("REDIS_PASSWORD"),
				DB:           viper.GetInt("REDIS_DB"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			Kafka: KafkaConfig{
				Brokers: strings.Split(viper.GetString("KAFKA_BROKERS"), ","),
				Topic:   viper.GetString("KAFKA_TOPIC"),
				Enabled: viper.GetBool("KAFKA_ENABLED"),
			},
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
				Enabled:   viper.GetBool("MINIO_ENABLED"),
			},
			JWT: JWTConfig{
				Secret: viper.GetString("JWT_SECRET"),
				Expire: viper.GetDuration("JWT_EXPIRE"),
			},
			RateLimit: RateLimitConfig{
				Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
				Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
			},
		}
	})
	return config
}

// DSN builds the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}
