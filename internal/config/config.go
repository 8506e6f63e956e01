package config

import (
	"os"
	"strings"
	"time"
)

// Server holds the platform daemon's configuration, read from the
// environment.
type Server struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BookBasePath string

	AuthSecret string

	CORSOrigins []string

	SeedDemo bool
}

func ServerFromEnv() Server {
	addr := envOr("HTTP_ADDR", ":8080")
	return Server{
		HTTPAddr:     addr,
		PublicURL:    os.Getenv("PUBLIC_URL"),
		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),
		BookBasePath: envOr("BOOK_BASE_PATH", "./data/books"),
		AuthSecret:   envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		CORSOrigins:  csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5500"),
		SeedDemo:     envBool("SEED_DEMO", false),
	}
}

// Client holds the learner client's configuration.
type Client struct {
	APIBaseURL string
	StudentID  string
	Password   string

	RefreshInterval time.Duration

	// Machine-to-machine mode (optional).
	TokenURL     string
	ClientID     string
	ClientSecret string
}

func ClientFromEnv() Client {
	interval := 3 * time.Second
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}
	return Client{
		APIBaseURL:      envOr("API_BASE_URL", "http://localhost:8080"),
		StudentID:       os.Getenv("STUDENT_ID"),
		Password:        os.Getenv("STUDENT_PASSWORD"),
		RefreshInterval: interval,
		TokenURL:        os.Getenv("OAUTH_TOKEN_URL"),
		ClientID:        os.Getenv("OAUTH_CLIENT_ID"),
		ClientSecret:    os.Getenv("OAUTH_CLIENT_SECRET"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
