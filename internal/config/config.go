package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Sessions
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	JWTSessionExpiry time.Duration
	PasswordPolicy   string
	SeedDemoAccount  bool

	// Federated sign-in (Google OAuth popup)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AuthorizedDomains  string

	// Auth state fan-out
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AI Providers
	GLMAPIKey string
	GLMAPIURL string
	GLMModel  string

	DeepSeekAPIKey string
	DeepSeekAPIURL string
	DeepSeekModel  string

	AITimeout time.Duration

	ContentInterests string
	ContentLocation  string

	// Server
	Port           string
	CORSOrigins    string
	AppName        string
	AppEnv         string
	SentryDSN      string
	RequestTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "newsaccess"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "newsaccess.db"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "720h"), 720*time.Hour),
		JWTSessionExpiry: parseDuration(getEnv("JWT_SESSION_EXPIRY", "24h"), 24*time.Hour),
		PasswordPolicy:   getEnv("PASSWORD_POLICY", "basic"),
		SeedDemoAccount:  parseBool(getEnv("SEED_DEMO_ACCOUNT", "false")),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/federated/callback"),
		AuthorizedDomains:  getEnv("AUTHORIZED_DOMAINS", "localhost"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0")),

		GLMAPIKey: getEnv("GLM_API_KEY", ""),
		GLMAPIURL: getEnv("GLM_API_URL", "https://api.z.ai/api/paas/v4/chat/completions"),
		GLMModel:  getEnv("GLM_MODEL", "glm-5"),

		DeepSeekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekAPIURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		DeepSeekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),

		AITimeout: parseDuration(getEnv("AI_TIMEOUT", "20s"), 20*time.Second),

		ContentInterests: getEnv("CONTENT_INTERESTS", "Artificial Intelligence, Machine Learning, Tech Startups"),
		ContentLocation:  getEnv("CONTENT_LOCATION", "San Francisco, CA"),

		Port:           getEnv("PORT", "8080"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		AppName:        getEnv("APP_NAME", "AI News Access"),
		AppEnv:         getEnv("APP_ENV", "development"),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", "30s"), 30*time.Second),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// StrictPasswords reports whether signup passwords must mix character classes.
func (c *Config) StrictPasswords() bool {
	return strings.EqualFold(c.PasswordPolicy, "strict")
}

// AuthorizedDomainList splits AUTHORIZED_DOMAINS into trimmed, lower-cased hosts.
func (c *Config) AuthorizedDomainList() []string {
	return parseCSV(strings.ToLower(c.AuthorizedDomains))
}

func (c *Config) FederationEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
