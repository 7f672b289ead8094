// Package config collects process configuration from flags and environment
// variables. Flags win over environment; environment wins over defaults.
package config

import (
	"flag"

	"github.com/kingstonroots/yaadstory/internal/utils"
)

type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// DatabasePath is the SQLite database file.
	DatabasePath string
	// JWTSecret signs session tokens. Must be set in production.
	JWTSecret string
	// MediaDir holds uploaded audio blobs, served under /media/.
	MediaDir string
	// StaticDir, when set, serves the built frontend from disk.
	StaticDir string

	// Speech-to-text provider settings (OpenAI-compatible endpoint).
	STTBaseURL string
	STTAPIKey  string
	STTModel   string

	// Admin seed account, created at startup when absent. Credentials come
	// from the deployment environment, never from source.
	AdminUsername string
	AdminPassword string
	AdminName     string
}

// Parse reads flags with environment fallbacks and returns the configuration.
func Parse() *Config {
	cfg := &Config{}
	flag.StringVar(&cfg.Addr, "addr", utils.SafeEnv("YAADSTORY_ADDR", ":8080"), "listen address")
	flag.StringVar(&cfg.DatabasePath, "db", utils.SafeEnv("YAADSTORY_DB", "yaadstory.db"), "SQLite database path")
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", utils.SafeEnv("YAADSTORY_JWT_SECRET", "yaadstory-dev-secret"), "HS256 token signing key")
	flag.StringVar(&cfg.MediaDir, "media-dir", utils.SafeEnv("YAADSTORY_MEDIA_DIR", "data/media"), "directory for uploaded audio")
	flag.StringVar(&cfg.StaticDir, "static-dir", utils.SafeEnv("YAADSTORY_STATIC_DIR", ""), "directory with built frontend assets")
	flag.StringVar(&cfg.STTBaseURL, "stt-base-url", utils.SafeEnv("YAADSTORY_STT_BASE_URL", "https://api.openai.com/v1"), "speech-to-text API base URL")
	flag.StringVar(&cfg.STTAPIKey, "stt-api-key", utils.SafeEnv("OPENAI_API_KEY", ""), "speech-to-text API key")
	flag.StringVar(&cfg.STTModel, "stt-model", utils.SafeEnv("YAADSTORY_STT_MODEL", "whisper-1"), "speech-to-text model")
	flag.StringVar(&cfg.AdminUsername, "admin-user", utils.SafeEnv("YAADSTORY_ADMIN_USER", ""), "admin username to seed")
	flag.StringVar(&cfg.AdminPassword, "admin-password", utils.SafeEnv("YAADSTORY_ADMIN_PASSWORD", ""), "admin password to seed")
	flag.StringVar(&cfg.AdminName, "admin-name", utils.SafeEnv("YAADSTORY_ADMIN_NAME", "Administrator"), "admin display name")
	flag.Parse()
	return cfg
}
