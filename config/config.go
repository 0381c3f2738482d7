package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"drawbot/database"

	"github.com/spf13/viper"
)

// Store backends
const (
	StoreBackendJSON     = "json"
	StoreBackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `mapstructure:"discord_token"`
	GuildID      string `mapstructure:"guild_id"` // Guild whose members are drawn from

	// Database configuration
	DatabaseURL  string `mapstructure:"database_url"`
	DatabaseName string `mapstructure:"database_name"`

	// Store configuration
	StoreBackend string `mapstructure:"store_backend"` // "json" or "postgres"
	StatePath    string `mapstructure:"lottery_state_path"`

	// Lottery configuration
	Timezone           string            `mapstructure:"lottery_timezone"`
	BlockedRoleID      string            `mapstructure:"blocked_role_id"`
	ClanRolesRaw       string            `mapstructure:"clan_roles"` // key:roleID,key:roleID
	ClanRoles          map[string]string `mapstructure:"-"`
	MemberFetchTimeout time.Duration     `mapstructure:"member_fetch_timeout"`

	// NATS configuration
	NATSServers string `mapstructure:"nats_servers"` // empty disables event publishing

	// OpenTelemetry configuration
	OTelEnabled              bool   `mapstructure:"otel_enabled"`
	OTelServiceName          string `mapstructure:"otel_service_name"`
	OTelExporterType         string `mapstructure:"otel_exporter_type"` // "console", "otlp" or "none"
	OTelOTLPEndpoint         string `mapstructure:"otel_otlp_endpoint"`
	OTelExportIntervalMillis int    `mapstructure:"otel_export_interval_millis"`

	// Local listeners
	HealthAddr   string `mapstructure:"health_addr"`
	DebugAPIPort int    `mapstructure:"debug_api_port"` // 0 disables the debug API

	// Environment
	Environment string `mapstructure:"environment"` // "development", "production" or "test"
	LogLevel    string `mapstructure:"log_level"`

	location *time.Location
}

var (
	instance   *Config
	once       sync.Once
	mu         sync.Mutex // Protects instance for test setup
	configPath = "."
)

// SetConfigPath sets the directory searched for config.yaml before the first Get
func SetConfigPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	configPath = path
}

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load(configPath)
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Location returns the timezone draws are scheduled in
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from an optional config.yaml in dir and the environment.
// Environment variables take precedence over the file.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("discord_token", "")
	v.SetDefault("guild_id", "")
	v.SetDefault("database_url", "")
	v.SetDefault("database_name", "")
	v.SetDefault("store_backend", StoreBackendJSON)
	v.SetDefault("lottery_state_path", "data/lotteries.json")
	v.SetDefault("lottery_timezone", "UTC")
	v.SetDefault("blocked_role_id", "")
	v.SetDefault("clan_roles", "")
	v.SetDefault("member_fetch_timeout", "15s")
	v.SetDefault("nats_servers", "")
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_service_name", "drawbot")
	v.SetDefault("otel_exporter_type", "none")
	v.SetDefault("otel_otlp_endpoint", "localhost:4317")
	v.SetDefault("otel_export_interval_millis", 30000)
	v.SetDefault("health_addr", "127.0.0.1:8081")
	v.SetDefault("debug_api_port", 0)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
}

// finalize parses derived fields and validates the result
func (c *Config) finalize() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	if c.Environment == "" {
		c.Environment = "development"
	}

	clans, err := ParseClanRoles(c.ClanRolesRaw)
	if err != nil {
		return err
	}
	c.ClanRoles = clans

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("LOTTERY_TIMEZONE %q is invalid: %w", c.Timezone, err)
	}
	c.location = loc

	switch c.StoreBackend {
	case StoreBackendJSON:
		if strings.TrimSpace(c.StatePath) == "" {
			return fmt.Errorf("LOTTERY_STATE_PATH cannot be empty")
		}
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND: %s", c.StoreBackend)
	}

	if c.MemberFetchTimeout <= 0 {
		return fmt.Errorf("MEMBER_FETCH_TIMEOUT must be positive")
	}

	if c.Environment != "test" {
		// Validate required configuration
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_TOKEN is required")
		}
		if c.GuildID == "" {
			return fmt.Errorf("GUILD_ID is required")
		}
	}

	return nil
}

// ParseClanRoles parses "key:roleID,key:roleID" into a map keyed by lowercase clan key
func ParseClanRoles(raw string) (map[string]string, error) {
	clans := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, roleID, ok := strings.Cut(entry, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		roleID = strings.TrimSpace(roleID)
		if !ok || key == "" || roleID == "" {
			return nil, fmt.Errorf("invalid CLAN_ROLES entry %q, expected key:roleID", entry)
		}
		if _, dup := clans[key]; dup {
			return nil, fmt.Errorf("duplicate CLAN_ROLES key %q", key)
		}
		clans[key] = roleID
	}
	return clans, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:        "test",
		StoreBackend:       StoreBackendJSON,
		StatePath:          "data/lotteries.json",
		Timezone:           "UTC",
		ClanRoles:          map[string]string{},
		MemberFetchTimeout: 15 * time.Second,
		OTelExporterType:   "none",
		LogLevel:           "info",
		location:           time.UTC,
	}
}
