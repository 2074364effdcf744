package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"referral-intake/internal/shared/telemetry"
)

const (
	// DefaultSessionSecret is only acceptable in dev-like environments.
	DefaultSessionSecret = "dev-session-secret"

	AuthFailureJSON     = "json"
	AuthFailureRedirect = "redirect"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	TrustedProxies  []string

	DatabaseURL   string
	MongoDatabase string

	AdminUser           string
	AdminPassword       string
	SessionSecret       string
	SessionTTL          time.Duration
	SessionCookieSecure bool
	AuthFailureMode     string
	LoginRedirectURL    string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	DeleteResumeFiles  bool
	MaxUploadBytes     int64
	LoginRatePerMinute int
	SubmitRatePerMin   int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	// Existing process env always wins over file values.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := getEnv("DATABASE_URL", os.Getenv("MONGO_URI"))

	cfg := Config{
		Port:                getEnv("PORT", "3000"),
		Env:                 env,
		CORSAllowOrigin:     splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "https://indica.essencial.com.br")),
		TrustedProxies:      splitAndTrim(getEnv("TRUSTED_PROXIES", "")),
		DatabaseURL:         dbURL,
		MongoDatabase:       getEnv("MONGO_DATABASE", "indica"),
		AdminUser:           os.Getenv("USER_ADMIN"),
		AdminPassword:       os.Getenv("PASS_ADMIN"),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		SessionTTL:          getDuration("SESSION_TTL", 12*time.Hour),
		SessionCookieSecure: getBool("SESSION_COOKIE_SECURE", env == "production"),
		AuthFailureMode:     normalizeAuthFailureMode(getEnv("AUTH_FAILURE_MODE", AuthFailureJSON)),
		LoginRedirectURL:    getEnv("LOGIN_REDIRECT_URL", ""),
		ObjectStoreType:     normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:       getEnv("LOCAL_STORE_DIR", "uploads"),
		AWSRegion:           getEnv("AWS_REGION", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Prefix:            getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:         getEnv("SSE_KMS_KEY_ID", ""),
		DeleteResumeFiles:   getBool("DELETE_RESUME_FILES", true),
		MaxUploadBytes:      int64(getInt("MAX_UPLOAD_BYTES", 10<<20)),
		LoginRatePerMinute:  getInt("RATE_LIMIT_LOGIN_PER_MIN", 10),
		SubmitRatePerMin:    getInt("RATE_LIMIT_SUBMIT_PER_MIN", 30),
	}

	if cfg.SessionSecret == "" && cfg.IsDevLike() {
		telemetry.Warn("config.insecure_default", map[string]any{"key": "SESSION_SECRET"})
		cfg.SessionSecret = DefaultSessionSecret
	}
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		telemetry.Warn("config.admin_credentials_missing", map[string]any{"env": env})
	}
	if env == "production" && dbURL == "" {
		telemetry.Error("config.database_url_missing", map[string]any{"env": env})
	}
	return cfg
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid_bool", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeAuthFailureMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case AuthFailureRedirect:
		return AuthFailureRedirect
	default:
		return AuthFailureJSON
	}
}
