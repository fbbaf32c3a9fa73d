// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes the SnapOrtho site's
// settings: server timeouts, logging, database, auth, BroBot generation,
// deep links, the seen-flag store, rate limiting, and observability.
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/snaportho/snaportho-web/internal/sysutil"
)

// DevJWTSecret is the signing key used when AUTH_JWT_SECRET is unset. Load
// rejects it in release mode; debug and test modes accept it with a warning.
const DevJWTSecret = "snaportho-dev-only-secret-do-not-deploy"

// DBConfig selects the persisted store.
type DBConfig struct {
	Driver string // DB_DRIVER: sqlite|postgres
	Path   string // DB_PATH (sqlite)
	URL    string // DATABASE_URL (postgres)
}

// AuthConfig defines session token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string        // AUTH_JWT_SECRET (>= 32 bytes)
	TokenTTL   time.Duration // AUTH_TOKEN_TTL
	Issuer     string        // AUTH_ISSUER
	BcryptCost int           // AUTH_BCRYPT_COST in [4,31]
}

// BroBotConfig defines the case-prep generator and its guards.
type BroBotConfig struct {
	Generator      string        // GENERATOR: http|gemini
	GeneratorURL   string        // GENERATOR_URL
	GeneratorKey   string        // GENERATOR_API_KEY (optional bearer)
	GeminiAPIKey   string        // GEMINI_API_KEY
	GeminiModel    string        // GEMINI_MODEL
	Timeout        time.Duration // GENERATOR_TIMEOUT
	MaxPromptRunes int           // BROBOT_MAX_PROMPT_RUNES
	RateRPS        float64       // BROBOT_RATE_RPS
	RateBurst      int           // BROBOT_RATE_BURST
}

// DeepLinkConfig defines the app-open flow.
type DeepLinkConfig struct {
	Scheme       string        // DEEPLINK_SCHEME, without "://"
	AppStoreURL  string        // APP_STORE_URL
	PlayStoreURL string        // PLAY_STORE_URL
	LandingURL   string        // DEEPLINK_LANDING_URL
	Timeout      time.Duration // DEEPLINK_TIMEOUT
	MinElapsed   time.Duration // DEEPLINK_MIN_ELAPSED
	SiteHost     string        // SITE_HOST, allowed as a fallback host
}

// SeenConfig selects the already-seen flag store.
type SeenConfig struct {
	Backend  string        // SEEN_BACKEND: memory|db|redis
	RedisURL string        // REDIS_URL
	TTL      time.Duration // SEEN_TTL (redis only)
}

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "snaportho-web")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	LogFile        string // optional rotating log file
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DB       DBConfig
	Auth     AuthConfig
	BroBot   BroBotConfig
	DeepLink DeepLinkConfig
	Seen     SeenConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		LogFile:        getenv("LOG_FILE", ""),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "app.db"),
			URL:    getenv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:  getenv("AUTH_JWT_SECRET", DevJWTSecret),
			TokenTTL:   getdur("AUTH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:     getenv("AUTH_ISSUER", "snaportho-web"),
			BcryptCost: getint("AUTH_BCRYPT_COST", 12),
		},
		BroBot: BroBotConfig{
			Generator:      strings.ToLower(getenv("GENERATOR", "http")),
			GeneratorURL:   getenv("GENERATOR_URL", "http://localhost:8787/v1/case-prep"),
			GeneratorKey:   getenv("GENERATOR_API_KEY", ""),
			GeminiAPIKey:   getenv("GEMINI_API_KEY", ""),
			GeminiModel:    getenv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:        getdur("GENERATOR_TIMEOUT", 45*time.Second),
			MaxPromptRunes: getint("BROBOT_MAX_PROMPT_RUNES", 500),
			RateRPS:        getfloat("BROBOT_RATE_RPS", 0.2),
			RateBurst:      getint("BROBOT_RATE_BURST", 3),
		},
		DeepLink: DeepLinkConfig{
			Scheme:       strings.TrimSuffix(getenv("DEEPLINK_SCHEME", "snaportho"), "://"),
			AppStoreURL:  getenv("APP_STORE_URL", "https://apps.apple.com/us/app/snaportho/id1515590779"),
			PlayStoreURL: getenv("PLAY_STORE_URL", "https://play.google.com/store/apps/details?id=com.snaportho.app"),
			LandingURL:   getenv("DEEPLINK_LANDING_URL", "/app"),
			Timeout:      getdur("DEEPLINK_TIMEOUT", 1200*time.Millisecond),
			MinElapsed:   getdur("DEEPLINK_MIN_ELAPSED", 600*time.Millisecond),
			SiteHost:     strings.ToLower(getenv("SITE_HOST", "snaportho.com")),
		},
		Seen: SeenConfig{
			Backend:  strings.ToLower(getenv("SEEN_BACKEND", "db")),
			RedisURL: getenv("REDIS_URL", ""),
			TTL:      getdur("SEEN_TTL", 365*24*time.Hour),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "snaportho-web"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		return cfg, errors.New("AUTH_JWT_SECRET must be at least 32 bytes")
	}
	if cfg.GinMode == "release" && cfg.Auth.JWTSecret == DevJWTSecret {
		return cfg, errors.New("AUTH_JWT_SECRET must be set when GIN_MODE=release")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return cfg, errors.New("AUTH_TOKEN_TTL must be > 0")
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return cfg, errors.New("AUTH_BCRYPT_COST must be in [4,31]")
	}
	switch cfg.BroBot.Generator {
	case "http":
		if !isHTTPURL(cfg.BroBot.GeneratorURL) {
			return cfg, errors.New("GENERATOR_URL must be an absolute http(s) URL")
		}
	case "gemini":
		if strings.TrimSpace(cfg.BroBot.GeminiAPIKey) == "" {
			return cfg, errors.New("GEMINI_API_KEY is required when GENERATOR=gemini")
		}
	default:
		return cfg, errors.New("GENERATOR must be one of: http, gemini")
	}
	if cfg.BroBot.Timeout <= 0 {
		return cfg, errors.New("GENERATOR_TIMEOUT must be > 0")
	}
	if cfg.BroBot.MaxPromptRunes < 1 {
		return cfg, errors.New("BROBOT_MAX_PROMPT_RUNES must be >= 1")
	}
	if cfg.BroBot.RateRPS < 0 || cfg.BroBot.RateBurst < 1 {
		return cfg, errors.New("BROBOT_RATE_RPS must be >= 0 and BROBOT_RATE_BURST >= 1")
	}
	if strings.TrimSpace(cfg.DeepLink.Scheme) == "" || strings.ContainsAny(cfg.DeepLink.Scheme, ":/ ") {
		return cfg, errors.New("DEEPLINK_SCHEME must be a bare scheme name")
	}
	if !isHTTPURL(cfg.DeepLink.AppStoreURL) || !isHTTPURL(cfg.DeepLink.PlayStoreURL) {
		return cfg, errors.New("APP_STORE_URL and PLAY_STORE_URL must be absolute http(s) URLs")
	}
	if strings.TrimSpace(cfg.DeepLink.LandingURL) == "" {
		return cfg, errors.New("DEEPLINK_LANDING_URL must not be empty")
	}
	if cfg.DeepLink.Timeout <= 0 || cfg.DeepLink.MinElapsed <= 0 || cfg.DeepLink.MinElapsed > cfg.DeepLink.Timeout {
		return cfg, errors.New("DEEPLINK_MIN_ELAPSED must be > 0 and <= DEEPLINK_TIMEOUT")
	}
	switch cfg.Seen.Backend {
	case "memory", "db":
	case "redis":
		if strings.TrimSpace(cfg.Seen.RedisURL) == "" {
			return cfg, errors.New("REDIS_URL is required when SEEN_BACKEND=redis")
		}
	default:
		return cfg, errors.New("SEEN_BACKEND must be one of: memory, db, redis")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return cfg, nil
}

// FallbackHosts lists the hosts a deep-link fallback may point at: the two
// stores plus the site itself.
func (c DeepLinkConfig) FallbackHosts() []string {
	out := make([]string, 0, 3)
	for _, raw := range []string{c.AppStoreURL, c.PlayStoreURL} {
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			out = append(out, strings.ToLower(u.Hostname()))
		}
	}
	if h := strings.TrimSpace(c.SiteHost); h != "" {
		out = append(out, h)
	}
	return out
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// parsed returns parse(env[k]) when k is set, non-empty and parses cleanly;
// otherwise def.
func parsed[T any](k string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(k)
	if !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func getenv(k, def string) string {
	return parsed(k, def, func(s string) (string, error) { return s, nil })
}

func getfloat(k string, def float64) float64 {
	return parsed(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getint(k string, def int) int { return parsed(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration { return parsed(k, def, time.ParseDuration) }

func getbool(k string, def bool) bool {
	if v, ok := sysutil.ParseBool(os.Getenv(k)); ok {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath yields "/segment/..." with no trailing slash, or "/".
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
