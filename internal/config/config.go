package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	AdminUsername string
	AdminPassword string
	AdminEmail    string

	// GitHub asset store; all three empty token disables remote uploads.
	GitHubToken     string
	GitHubRepoOwner string
	GitHubRepoName  string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "bitstorm.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AdminUsername:   getEnv("ADMIN_USERNAME", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@bitstormcricket.com"),
		GitHubToken:     getEnv("GITHUB_TOKEN", ""),
		GitHubRepoOwner: getEnv("GITHUB_REPO_OWNER", ""),
		GitHubRepoName:  getEnv("GITHUB_REPO_NAME", ""),
	}

	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}
	if cfg.GitHubToken != "" && (cfg.GitHubRepoOwner == "" || cfg.GitHubRepoName == "") {
		return nil, fmt.Errorf("GITHUB_REPO_OWNER and GITHUB_REPO_NAME are required when GITHUB_TOKEN is set")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("github_uploads", cfg.GitHubToken != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
