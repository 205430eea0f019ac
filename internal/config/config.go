package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Assistant AssistantConfig
	Social    SocialConfig
	OAuth     OAuthConfig
	Auth      AuthConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// AssistantConfig points at the conversational agent gateway.
type AssistantConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SocialConfig points at the publishing gateway used to push content
// to connected platforms.
type SocialConfig struct {
	PublishBaseURL string
	PublishTimeout time.Duration
}

// OAuthConfig carries per-platform OAuth2 client credentials.
type OAuthConfig struct {
	Google    OAuthClient
	Facebook  OAuthClient
	Instagram OAuthClient
	LinkedIn  OAuthClient
	YouTube   OAuthClient
}

type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Assistant: AssistantConfig{
			BaseURL: getEnv("ASSISTANT_BASE_URL", "http://localhost:8000"),
			Timeout: getEnvAsDuration("ASSISTANT_TIMEOUT", 60*time.Second),
		},
		Social: SocialConfig{
			PublishBaseURL: getEnv("PUBLISH_GATEWAY_URL", "http://localhost:8100"),
			PublishTimeout: getEnvAsDuration("PUBLISH_TIMEOUT", 30*time.Second),
		},
		OAuth: OAuthConfig{
			Google:    loadOAuthClient("GOOGLE"),
			Facebook:  loadOAuthClient("FACEBOOK"),
			Instagram: loadOAuthClient("INSTAGRAM"),
			LinkedIn:  loadOAuthClient("LINKEDIN"),
			YouTube:   loadOAuthClient("YOUTUBE"),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			TokenExpiry: getEnvAsDuration("JWT_TOKEN_EXPIRY", 72*time.Hour),
		},
	}
}

func loadOAuthClient(prefix string) OAuthClient {
	return OAuthClient{
		ClientID:     getEnv(prefix+"_CLIENT_ID", ""),
		ClientSecret: getEnv(prefix+"_CLIENT_SECRET", ""),
		RedirectURL:  getEnv(prefix+"_REDIRECT_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
