package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/attendlab/punch-agent-go/internal/pkg/validator"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Identity IdentityConfig
	Capture  CaptureConfig
	Location LocationConfig
}

// AppConfig holds bridge/agent configuration
type AppConfig struct {
	Port          int
	Env           string
	LogLevel      string
	AllowedOrigin string
}

// APIConfig holds the remote attendance API connection
type APIConfig struct {
	BaseURL string
	Token   string
}

// IdentityConfig holds who this device punches for
type IdentityConfig struct {
	SiteID    string
	UserID    string
	ProjectID string
}

type CaptureConfig struct {
	Platform    string // native | web
	StagingPath string
	Permission  string // granted | denied | undetermined, as reported by the shell
}

type LocationConfig struct {
	Timeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Bridge configuration
	bridgePort, err := strconv.Atoi(getEnv("BRIDGE_PORT", "8686"))
	if err != nil {
		return nil, fmt.Errorf("invalid BRIDGE_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:          bridgePort,
		Env:           getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	// Remote attendance API
	config.API = APIConfig{
		BaseURL: getEnv("API_BASE_URL", ""),
		Token:   getEnv("API_TOKEN", ""),
	}
	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}

	config.Identity = IdentityConfig{
		SiteID:    getEnv("SITE_ID", ""),
		UserID:    getEnv("USER_ID", ""),
		ProjectID: getEnv("PROJECT_ID", ""),
	}
	if config.Identity.UserID == "" {
		return nil, fmt.Errorf("USER_ID is required")
	}

	config.Capture = CaptureConfig{
		Platform:    getEnv("CAPTURE_PLATFORM", "native"),
		StagingPath: getEnv("FRAME_STAGING_PATH", "/tmp/punch-agent/frame.jpg"),
		Permission:  getEnv("CAMERA_PERMISSION", "granted"),
	}
	if !validator.IsInSlice(config.Capture.Platform, []string{"native", "web"}) {
		return nil, fmt.Errorf("invalid CAPTURE_PLATFORM: %s", config.Capture.Platform)
	}
	if !validator.IsInSlice(config.Capture.Permission, []string{"granted", "denied", "undetermined"}) {
		return nil, fmt.Errorf("invalid CAMERA_PERMISSION: %s", config.Capture.Permission)
	}

	locationTimeoutMs, err := strconv.Atoi(getEnv("LOCATION_TIMEOUT_MS", "2000"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_TIMEOUT_MS: %w", err)
	}
	config.Location = LocationConfig{
		Timeout: time.Duration(locationTimeoutMs) * time.Millisecond,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
