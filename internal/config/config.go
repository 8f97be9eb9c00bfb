// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default freshness and retention windows. The backing data is refreshed on
// a snapshot cadence, so five minutes keeps dashboards responsive without
// re-hitting the warehouse on every render; chat results are ephemeral and
// reclaimed on the same window.
const (
	DefaultQueryCacheTTL = 5 * time.Minute
	DefaultTaskRetention = 5 * time.Minute
)

// Config holds the configuration for the dashboard backend.
type Config struct {
	// Databricks workspace access.
	DatabricksHost  string // workspace base URL, e.g. https://adb-123.azuredatabricks.net
	DatabricksToken string // service principal PAT for warehouse + serving calls
	WarehouseID     string // SQL warehouse for statement execution

	// Warehouse schema the dashboard queries target.
	Catalog    string // default "snowflake_retail_consumer_goods"
	SchemaName string // default "supply_chain_control_tower"

	// Chat agent serving endpoint. Empty disables the chat routes.
	ChatModel string

	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"
	StaticDir  string // built frontend directory; empty disables SPA serving

	// Freshness and retention windows.
	QueryCacheTTL time.Duration // query result cache TTL (default 5m)
	TaskRetention time.Duration // chat task retention window (default 5m)

	// Upstream timeouts. The statement wait window is how long the warehouse
	// holds the synchronous call before reporting a non-terminal state; the
	// chat read timeout is generous because agent calls run for minutes.
	StatementWaitTimeout time.Duration // default 30s
	ChatConnectTimeout   time.Duration // default 10s
	ChatReadTimeout      time.Duration // default 5m

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// FullSchema returns the catalog-qualified schema the dashboard queries run against.
func (c *Config) FullSchema() string {
	return c.Catalog + "." + c.SchemaName
}

// ChatEnabled returns true when a chat agent endpoint is configured.
func (c *Config) ChatEnabled() bool {
	return c.ChatModel != ""
}

// LoadFromEnv loads configuration from environment variables.
// DATABRICKS_HOST and WAREHOUSE_ID are required; everything else has a
// usable default for development.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DatabricksHost:  strings.TrimRight(os.Getenv("DATABRICKS_HOST"), "/"),
		DatabricksToken: os.Getenv("DATABRICKS_TOKEN"),
		WarehouseID:     os.Getenv("WAREHOUSE_ID"),
		Catalog:         os.Getenv("CATALOG"),
		SchemaName:      os.Getenv("SCHEMA_NAME"),
		ChatModel:       os.Getenv("CHAT_MODEL"),
		ListenAddr:      os.Getenv("LISTEN_ADDR"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		Env:             os.Getenv("ENV"),
		StaticDir:       os.Getenv("STATIC_DIR"),
	}

	if cfg.DatabricksHost == "" {
		return nil, fmt.Errorf("DATABRICKS_HOST must be set")
	}
	if cfg.WarehouseID == "" {
		return nil, fmt.Errorf("WAREHOUSE_ID must be set")
	}

	// Durations — invalid values fall back to defaults with a warning.
	cfg.QueryCacheTTL = durationEnv(cfg, "QUERY_CACHE_TTL", DefaultQueryCacheTTL)
	cfg.TaskRetention = durationEnv(cfg, "CHAT_TASK_RETENTION", DefaultTaskRetention)
	cfg.StatementWaitTimeout = durationEnv(cfg, "STATEMENT_WAIT_TIMEOUT", 30*time.Second)
	cfg.ChatConnectTimeout = durationEnv(cfg, "CHAT_CONNECT_TIMEOUT", 10*time.Second)
	cfg.ChatReadTimeout = durationEnv(cfg, "CHAT_READ_TIMEOUT", 5*time.Minute)

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults
	if cfg.Catalog == "" {
		cfg.Catalog = "snowflake_retail_consumer_goods"
	}
	if cfg.SchemaName == "" {
		cfg.SchemaName = "supply_chain_control_tower"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.DatabricksToken == "" {
		cfg.Warnings = append(cfg.Warnings, "DATABRICKS_TOKEN not set — warehouse and agent calls will be rejected upstream")
	}
	if !cfg.ChatEnabled() {
		cfg.Warnings = append(cfg.Warnings, "CHAT_MODEL not set — chat routes will respond 503")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.DatabricksToken == "" {
			return nil, fmt.Errorf("DATABRICKS_TOKEN must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// durationEnv parses a duration env var, falling back to def and recording a
// warning when the value does not parse.
func durationEnv(cfg *Config, key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s=%q is not a valid duration — using %s", key, v, def))
		return def
	}
	return d
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
