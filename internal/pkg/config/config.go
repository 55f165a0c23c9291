package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// GuardTimeoutMS bounds each guarded persistence call during dispatch.
	GuardTimeoutMS int `env:"GUARD_TIMEOUT_MS, default=2500"`
	// Workers is the size of the per-phone sharded worker pool.
	Workers int `env:"WORKERS, default=8"`
	// FilesBaseURL is the public prefix uploaded images are served under.
	FilesBaseURL string `env:"FILES_BASE_URL, default=http://localhost:8080/files"`

	Mongo    MongoConfig
	Redis    RedisConfig
	WhatsApp WhatsAppConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=chatbot_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type WhatsAppConfig struct {
	BaseURL       string `env:"WA_BASE_URL, default=https://graph.facebook.com/v19.0"`
	AccessToken   string `env:"WA_ACCESS_TOKEN"`
	PhoneNumberID string `env:"WA_PHONE_NUMBER_ID"`
	// VerifyToken answers the platform's webhook subscription handshake.
	VerifyToken string `env:"WA_VERIFY_TOKEN"`
	// AppSecret signs webhook payloads; empty disables signature checks.
	AppSecret string `env:"WA_APP_SECRET"`
}

// GuardTimeout returns the guard deadline as a duration.
func (c *Config) GuardTimeout() time.Duration {
	return time.Duration(c.GuardTimeoutMS) * time.Millisecond
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
