package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, covers the store round trip

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StoreBackend string // "redis" | "memory"
	Collection   string // document collection name (default: bookmarks)
	SecretsFile  string // optional YAML file holding store credentials
	TrimKeywords bool   // trim whitespace around comma-split keywords

	// Redis (ignored when SecretsFile provides the credentials)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Insert rate limiting (per client IP)
	RateLimitBurst  int // tokens available at once
	RateLimitPerMin int // refill rate

	AllowedHosts []string // optional, restrict UI routes to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MARKS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("MARKS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("MARKS_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("MARKS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MARKS_PRETTY_LOG", true),

		// Store
		StoreBackend: strings.ToLower(getenv("MARKS_STORE", StoreRedis)),
		Collection:   getenv("MARKS_COLLECTION", "bookmarks"),
		SecretsFile:  getenv("MARKS_SECRETS_FILE", ""),
		TrimKeywords: mustBool("MARKS_TRIM_KEYWORDS", false),

		// Redis settings
		RedisAddr:             getenv("MARKS_REDIS_ADDR", ""),
		RedisUser:             getenv("MARKS_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("MARKS_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("MARKS_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("MARKS_REDIS_DB", 0),
		RedisDT:               mustDuration("MARKS_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("MARKS_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("MARKS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("MARKS_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("MARKS_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("MARKS_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("MARKS_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("MARKS_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("MARKS_REDIS_WARN_THRESHOLD", 3),

		// Rate limiting
		RateLimitBurst:  getenvInt("MARKS_RATE_LIMIT_BURST", 10),
		RateLimitPerMin: getenvInt("MARKS_RATE_LIMIT_PER_MIN", 30),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("MARKS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("MARKS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("MARKS_TRUST_PROXY", false),
	}

	validate(cfg)

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// validate panics on settings the process cannot start with.
func validate(cfg *Config) {
	switch cfg.StoreBackend {
	case StoreMemory:
		return
	case StoreRedis:
	default:
		panic(fmt.Sprintf("❌ FATAL: MARKS_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, cfg.StoreBackend))
	}

	// Credentials come from the secrets file when one is mounted.
	if cfg.SecretsFile != "" {
		return
	}

	if cfg.RedisAddr == "" {
		cfg.RedisAddr = requireEnv("MARKS_REDIS_ADDR")
	}
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: MARKS_REDIS_PASSWORD is required when MARKS_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
