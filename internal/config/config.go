package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Theme
	ThemeDir   string
	BlockTheme bool

	// Block types removed from the registry after loading, e.g. core/cover.
	HiddenBlockTypes []string

	// Custom template store (SQLite). Empty disables it.
	DatabasePath string

	// Remote WordPress site. Empty URL disables it.
	WPURL         string
	WPUser        string
	WPAppPassword string

	// Style book sessions
	SessionTTL  time.Duration
	MaxSessions int

	// Upload limits
	MaxUploadBytes int64

	// Help
	ShowSupport bool

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("BLOCKBOOK_API_KEY"),

		ThemeDir:   os.Getenv("THEME_DIR"),
		BlockTheme: envBool("BLOCK_THEME", true),

		HiddenBlockTypes: envList("HIDDEN_BLOCK_TYPES"),

		DatabasePath: os.Getenv("DATABASE_PATH"),

		WPURL:         os.Getenv("WP_URL"),
		WPUser:        os.Getenv("WP_USER"),
		WPAppPassword: os.Getenv("WP_APP_PASSWORD"),

		SessionTTL:  envDuration("SESSION_TTL", 1*time.Hour),
		MaxSessions: envInt("MAX_SESSIONS", 1000),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		ShowSupport: envBool("SHOW_SUPPORT", false),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("BLOCKBOOK_API_KEY is required")
	}
	if c.WPURL != "" && (c.WPUser == "") != (c.WPAppPassword == "") {
		return fmt.Errorf("WP_USER and WP_APP_PASSWORD must be set together")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
