// Package config loads and validates the service configuration from
// defaults, an optional YAML file and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Redis     RedisConfig     `json:"redis" yaml:"redis"`
	OpenAI    OpenAIConfig    `json:"openai" yaml:"openai"`
	Auth      AuthConfig      `json:"auth" yaml:"auth"`
	Email     EmailConfig     `json:"email" yaml:"email"`
	Reminders RemindersConfig `json:"reminders" yaml:"reminders"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Env       string          `json:"env" yaml:"env"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string   `json:"host" yaml:"host"`
	Port           int      `json:"port" yaml:"port"`
	ReadTimeout    int      `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeout   int      `json:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// DatabaseConfig represents relational storage configuration. Provider is
// "postgres" for hosted deployments or "sqlite" for local development.
type DatabaseConfig struct {
	Provider string `json:"provider" yaml:"provider"`
	DSN      string `json:"-" yaml:"dsn"`
	Path     string `json:"path" yaml:"path"`
}

// RedisConfig represents the optional Redis connection used for reminder
// de-duplication and read caching.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"-" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
}

// OpenAIConfig represents the hosted completion API configuration
type OpenAIConfig struct {
	APIKey         string  `json:"-" yaml:"api_key"`
	BaseURL        string  `json:"base_url" yaml:"base_url"`
	Model          string  `json:"model" yaml:"model"`
	MaxTokens      int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature    float64 `json:"temperature" yaml:"temperature"`
	RequestTimeout int     `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

// AuthConfig represents the session verification endpoint of the hosting
// platform's auth service. When disabled, requests are trusted to carry
// their own user ID (server-to-server deployments behind a gateway).
type AuthConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"-" yaml:"api_key"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// EmailConfig represents the transactional email provider configuration
type EmailConfig struct {
	APIKey      string `json:"-" yaml:"api_key"`
	BaseURL     string `json:"base_url" yaml:"base_url"`
	FromAddress string `json:"from_address" yaml:"from_address"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
}

// RemindersConfig represents the meeting-reminder poller configuration
type RemindersConfig struct {
	Enabled          bool `json:"enabled" yaml:"enabled"`
	IntervalSeconds  int  `json:"interval_seconds" yaml:"interval_seconds"`
	LookaheadMinutes int  `json:"lookahead_minutes" yaml:"lookahead_minutes"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 60,
		},
		Database: DatabaseConfig{
			Provider: "postgres",
			Path:     "./data/clyra.db",
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Enabled: false,
		},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1/chat/completions",
			Model:          "gpt-4o-mini",
			MaxTokens:      3000,
			Temperature:    0.3,
			RequestTimeout: 60,
		},
		Email: EmailConfig{
			BaseURL:     "https://api.resend.com/emails",
			FromAddress: "Clyra <noreply@clyra.app>",
			Enabled:     false,
		},
		Reminders: RemindersConfig{
			Enabled:          false,
			IntervalSeconds:  60,
			LookaheadMinutes: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Env: "development",
	}
}

// LoadConfig loads configuration from defaults, an optional YAML file
// (CLYRA_CONFIG_FILE) and environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := DefaultConfig()

	if path := os.Getenv("CLYRA_CONFIG_FILE"); path != "" {
		if err := loadFromFile(config, path); err != nil {
			return nil, err
		}
	}

	loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile overlays configuration from a YAML file
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator-controlled env var
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	loadServerConfig(config)
	loadDatabaseConfig(config)
	loadRedisConfig(config)
	loadOpenAIConfig(config)
	loadAuthConfig(config)
	loadEmailConfig(config)
	loadRemindersConfig(config)

	if level := os.Getenv("CLYRA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("CLYRA_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if env := os.Getenv("CLYRA_ENV"); env != "" {
		config.Env = env
	}
}

// loadServerConfig loads server configuration from environment
func loadServerConfig(config *Config) {
	if host := os.Getenv("CLYRA_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := getEnvInt("CLYRA_PORT"); port > 0 {
		config.Server.Port = port
	}
	if rt := getEnvInt("CLYRA_READ_TIMEOUT_SECONDS"); rt > 0 {
		config.Server.ReadTimeout = rt
	}
	if wt := getEnvInt("CLYRA_WRITE_TIMEOUT_SECONDS"); wt > 0 {
		config.Server.WriteTimeout = wt
	}
	if origins := os.Getenv("CLYRA_ALLOWED_ORIGINS"); origins != "" {
		parts := strings.Split(origins, ",")
		config.Server.AllowedOrigins = config.Server.AllowedOrigins[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				config.Server.AllowedOrigins = append(config.Server.AllowedOrigins, p)
			}
		}
	}
}

// loadDatabaseConfig loads storage configuration from environment
func loadDatabaseConfig(config *Config) {
	if provider := os.Getenv("CLYRA_DB_PROVIDER"); provider != "" {
		config.Database.Provider = provider
	}
	// DATABASE_URL is the conventional hosted-Postgres variable
	if dsn := os.Getenv("CLYRA_DATABASE_URL"); dsn != "" {
		config.Database.DSN = dsn
	} else if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		config.Database.DSN = dsn
	}
	if path := os.Getenv("CLYRA_SQLITE_PATH"); path != "" {
		config.Database.Path = path
	}
}

// loadRedisConfig loads Redis configuration from environment
func loadRedisConfig(config *Config) {
	if addr := os.Getenv("CLYRA_REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
		config.Redis.Enabled = true
	}
	if password := os.Getenv("CLYRA_REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}
	if db := os.Getenv("CLYRA_REDIS_DB"); db != "" {
		if d, err := strconv.Atoi(db); err == nil {
			config.Redis.DB = d
		}
	}
	if enabled := os.Getenv("CLYRA_REDIS_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Redis.Enabled = e
		}
	}
}

// loadOpenAIConfig loads completion API configuration from environment
func loadOpenAIConfig(config *Config) {
	if apiKey := os.Getenv("CLYRA_OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	} else if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}
	if baseURL := os.Getenv("CLYRA_OPENAI_BASE_URL"); baseURL != "" {
		config.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("CLYRA_OPENAI_MODEL"); model != "" {
		config.OpenAI.Model = model
	}
	if maxTokens := getEnvInt("CLYRA_OPENAI_MAX_TOKENS"); maxTokens > 0 {
		config.OpenAI.MaxTokens = maxTokens
	}
	if temp := os.Getenv("CLYRA_OPENAI_TEMPERATURE"); temp != "" {
		if t, err := strconv.ParseFloat(temp, 64); err == nil {
			config.OpenAI.Temperature = t
		}
	}
	if timeout := getEnvInt("CLYRA_OPENAI_TIMEOUT_SECONDS"); timeout > 0 {
		config.OpenAI.RequestTimeout = timeout
	}
}

// loadAuthConfig loads session verification configuration from environment
func loadAuthConfig(config *Config) {
	if baseURL := os.Getenv("CLYRA_AUTH_URL"); baseURL != "" {
		config.Auth.BaseURL = baseURL
		config.Auth.Enabled = true
	}
	if apiKey := os.Getenv("CLYRA_AUTH_API_KEY"); apiKey != "" {
		config.Auth.APIKey = apiKey
	}
	if enabled := os.Getenv("CLYRA_AUTH_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Auth.Enabled = e
		}
	}
}

// loadEmailConfig loads email provider configuration from environment
func loadEmailConfig(config *Config) {
	if apiKey := os.Getenv("CLYRA_RESEND_API_KEY"); apiKey != "" {
		config.Email.APIKey = apiKey
		config.Email.Enabled = true
	} else if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		config.Email.APIKey = apiKey
		config.Email.Enabled = true
	}
	if baseURL := os.Getenv("CLYRA_EMAIL_BASE_URL"); baseURL != "" {
		config.Email.BaseURL = baseURL
	}
	if from := os.Getenv("CLYRA_EMAIL_FROM"); from != "" {
		config.Email.FromAddress = from
	}
	if enabled := os.Getenv("CLYRA_EMAIL_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Email.Enabled = e
		}
	}
}

// loadRemindersConfig loads reminder poller configuration from environment
func loadRemindersConfig(config *Config) {
	if enabled := os.Getenv("CLYRA_REMINDERS_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Reminders.Enabled = e
		}
	}
	if interval := getEnvInt("CLYRA_REMINDERS_INTERVAL_SECONDS"); interval > 0 {
		config.Reminders.IntervalSeconds = interval
	}
	if lookahead := getEnvInt("CLYRA_REMINDERS_LOOKAHEAD_MINUTES"); lookahead > 0 {
		config.Reminders.LookaheadMinutes = lookahead
	}
}

// getEnvInt parses an integer environment variable, returning 0 when unset
// or unparseable
func getEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return i
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Database.Provider {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("postgres provider requires DATABASE_URL")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("sqlite provider requires a database path")
		}
	default:
		return fmt.Errorf("unsupported database provider: %s", c.Database.Provider)
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai temperature must be between 0 and 2, got %f", c.OpenAI.Temperature)
	}
	if c.Reminders.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("reminders require redis for de-duplication")
	}
	if c.Auth.Enabled && c.Auth.BaseURL == "" {
		return fmt.Errorf("auth verification requires CLYRA_AUTH_URL")
	}
	return nil
}

// IsProduction reports whether the service runs in production-hardened mode.
// Error details are withheld from HTTP responses when true.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
