package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Discord       DiscordConfig       `yaml:"discord"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Ballchasing   BallchasingConfig   `yaml:"ballchasing"`
	Accounts      AccountsConfig      `yaml:"accounts"`
	DM            DMConfig            `yaml:"dm"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DiscordConfig holds Discord configuration.
type DiscordConfig struct {
	Token         string `yaml:"token"`
	ApplicationID string `yaml:"application_id"`
	// GuildIDs restricts slash command registration to these guilds.
	// Empty registers commands globally.
	GuildIDs []string `yaml:"guild_ids"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process bus.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// BallchasingConfig holds settings for the ballchasing.com API client.
type BallchasingConfig struct {
	BaseURL           string        `yaml:"base_url"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	SearchCount       int           `yaml:"search_count"`
}

// AccountsConfig points at the player account lookup service.
type AccountsConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// DMConfig holds direct message dispatch settings.
type DMConfig struct {
	SendInterval time.Duration `yaml:"send_interval"`
}

// HTTPConfig holds the health/metrics listener configuration.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

const (
	DefaultBallchasingURL = "https://ballchasing.com/api"
	DefaultSearchCount    = 10
	DefaultSendInterval   = 500 * time.Millisecond
	DefaultHTTPAddress    = ":8080"
)

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports missing settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable not set")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_APPLICATION_ID"); v != "" {
		cfg.Discord.ApplicationID = v
	}
	if v := os.Getenv("DISCORD_GUILD_IDS"); v != "" {
		cfg.Discord.GuildIDs = splitList(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("BALLCHASING_BASE_URL"); v != "" {
		cfg.Ballchasing.BaseURL = v
	}
	if v := os.Getenv("BALLCHASING_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Ballchasing.RequestTimeout = d
		}
	}
	if v := os.Getenv("BALLCHASING_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ballchasing.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("BALLCHASING_SEARCH_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ballchasing.SearchCount = n
		}
	}
	if v := os.Getenv("ACCOUNTS_BASE_URL"); v != "" {
		cfg.Accounts.BaseURL = v
	}
	if v := os.Getenv("ACCOUNTS_API_KEY"); v != "" {
		cfg.Accounts.APIKey = v
	}
	if v := os.Getenv("DM_SEND_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DM.SendInterval = d
		}
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.Observability.ServiceName = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Ballchasing.BaseURL == "" {
		cfg.Ballchasing.BaseURL = DefaultBallchasingURL
	}
	if cfg.Ballchasing.RequestTimeout == 0 {
		cfg.Ballchasing.RequestTimeout = 30 * time.Second
	}
	if cfg.Ballchasing.RequestsPerSecond == 0 {
		cfg.Ballchasing.RequestsPerSecond = 2
	}
	if cfg.Ballchasing.SearchCount == 0 {
		cfg.Ballchasing.SearchCount = DefaultSearchCount
	}
	if cfg.DM.SendInterval == 0 {
		cfg.DM.SendInterval = DefaultSendInterval
	}
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = DefaultHTTPAddress
	}
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "rsc-league-bot"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
