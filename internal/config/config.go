package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	SessionSecret   string        // secret used to sign session tokens
	SessionTTL      time.Duration // lifetime of a session token and its stored schedule
	RatingsURL      string        // base URL of the ratings provider
	RegistrarURL    string        // base URL of the registrar provider
	UpstreamTimeout time.Duration // per-call deadline for provider lookups
	PageSize        int           // courses per catalog page
	Palette         []string      // course colors, in assignment order
	FixturePath     string        // when set, both providers are served from this file
	ICSWeeks        int           // weeks covered by the calendar export
}

// Load reads a .env file when present, then the environment.  Required
// variables are enforced by must() and missing values cause the program
// to exit with a fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	cfg := Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            envStr("APP_PORT", "8080"),
		SessionSecret:   must("SESSION_SECRET"),
		SessionTTL:      envDur("SESSION_TTL", 30*24*time.Hour),
		RatingsURL:      envStr("RATINGS_BASE_URL", "https://api.planetterp.com/v1"),
		RegistrarURL:    envStr("REGISTRAR_BASE_URL", "https://api.umd.io/v1"),
		UpstreamTimeout: envDur("UPSTREAM_TIMEOUT", 5*time.Second),
		PageSize:        envInt("CATALOG_PAGE_SIZE", 30),
		Palette:         parseList(envStr("SCHEDULE_PALETTE", "red,blue,green,purple,orange,magenta")),
		FixturePath:     os.Getenv("UPSTREAM_FIXTURE"),
		ICSWeeks:        envInt("ICS_WEEKS", 15),
	}
	if cfg.PageSize < 1 {
		log.Fatalf("invalid CATALOG_PAGE_SIZE: %d", cfg.PageSize)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
