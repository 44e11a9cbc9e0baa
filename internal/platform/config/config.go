package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr      string
	LogLevel  string
	LogFormat string

	Engine EngineConfig
	Redis  RedisConfig

	// HostJWTSigningKey enables host attach authentication when set.
	HostJWTSigningKey string
	// StateChannel is the Redis pub/sub channel for engine state when Redis is configured.
	StateChannel string
}

// EngineConfig points the bridge at the remote verification API.
type EngineConfig struct {
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// RedisConfig configures the optional Redis connection. An empty URL keeps
// engine state in process.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:      envString("BRIDGE_ADDR", ":8080"),
		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: envString("LOG_FORMAT", "json"),
		Engine: EngineConfig{
			BaseURL:          envString("ENGINE_BASE_URL", "https://verification.didit.me"),
			APIKey:           os.Getenv("ENGINE_API_KEY"),
			Timeout:          envDuration("ENGINE_TIMEOUT", 15*time.Second),
			BreakerThreshold: envInt("ENGINE_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  envDuration("ENGINE_BREAKER_COOLDOWN", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		HostJWTSigningKey: os.Getenv("HOST_JWT_SIGNING_KEY"),
		StateChannel:      envString("STATE_CHANNEL", "verifybridge:engine:state"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
