package util

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultShellAddr       = "127.0.0.1:8765"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultRequestTimeout = 15 * time.Second

	defaultBackgroundLogoutThreshold = 5 * time.Minute

	defaultRedisPrefix = "candidate:"
	defaultLogLevel    = "info"

	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"

	EncryptionKeyLength = 32
)

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	ShellAPIKey     string
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:      getenvOrDefault("SHELL_ADDRESS", defaultShellAddr),
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
		ShellAPIKey:     os.Getenv("SHELL_API_KEY"),
	}
}

// APIConfig describes the remote recruitment API.
type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

func NewAPIConfig() *APIConfig {
	baseURL := strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if baseURL == "" {
		log.Fatal("API_BASE_URL is not set")
	}

	return &APIConfig{
		BaseURL:        baseURL,
		RequestTimeout: parseDurationOrDefault("REQUEST_TIMEOUT", defaultRequestTimeout),
	}
}

type SessionConfig struct {
	BackgroundLogoutThreshold time.Duration
	DeviceName                string
	RequestTimeout            time.Duration
}

func NewSessionConfig() *SessionConfig {
	return &SessionConfig{
		BackgroundLogoutThreshold: parseDurationOrDefault("BACKGROUND_LOGOUT_THRESHOLD", defaultBackgroundLogoutThreshold),
		DeviceName:                os.Getenv("DEVICE_NAME"),
		RequestTimeout:            parseDurationOrDefault("REQUEST_TIMEOUT", defaultRequestTimeout),
	}
}

// StoreConfig selects where secure and preference values live.
// EncryptionKey is required for the redis backend.
type StoreConfig struct {
	Backend       string
	RedisAddr     string
	RedisPrefix   string
	EncryptionKey []byte
}

func NewStoreConfig() *StoreConfig {
	backend := strings.ToLower(getenvOrDefault("SECURE_STORE", StoreBackendMemory))
	if backend != StoreBackendMemory && backend != StoreBackendRedis {
		log.Printf("Invalid SECURE_STORE: %s, using default %s", backend, StoreBackendMemory)
		backend = StoreBackendMemory
	}

	cfg := &StoreConfig{
		Backend:     backend,
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPrefix: getenvOrDefault("REDIS_PREFIX", defaultRedisPrefix),
	}

	if raw := os.Getenv("STORE_ENCRYPTION_KEY"); raw != "" {
		key, err := decodeEncryptionKey(raw)
		if err != nil {
			log.Fatalf("STORE_ENCRYPTION_KEY: %v", err)
		}
		cfg.EncryptionKey = key
	}

	if backend == StoreBackendRedis {
		if cfg.RedisAddr == "" {
			log.Fatal("REDIS_ADDR is not set")
		}
		if cfg.EncryptionKey == nil {
			log.Fatal("STORE_ENCRYPTION_KEY is not set")
		}
	}

	return cfg
}

func GetWebhookURL() string {
	return os.Getenv("WEBHOOK_URL")
}

func GetLogLevel() string {
	return strings.ToLower(getenvOrDefault("LOG_LEVEL", defaultLogLevel))
}

func decodeEncryptionKey(raw string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if len(key) != EncryptionKeyLength {
		return nil, fmt.Errorf("key must be %d bytes, got %d", EncryptionKeyLength, len(key))
	}
	return key, nil
}

func getenvOrDefault(varName, def string) string {
	if v := os.Getenv(varName); v != "" {
		return v
	}
	return def
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}
