package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// RemoteConfig holds one remote contact system's API endpoint
type RemoteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// APIKeyFile, when set, points at a mounted secret file holding the
	// key. The file is re-read after credential rejections.
	APIKeyFile    string   `mapstructure:"api_key_file"`
	IDPath        []string `mapstructure:"id_path"`
	UpdatedAtPath []string `mapstructure:"updated_at_path"`
	Timeout       int      `mapstructure:"timeout"` // in seconds
}

// RetryConfig holds retry executor configuration
type RetryConfig struct {
	MaxAttempts       int           `mapstructure:"max_attempts"`
	InitialInterval   time.Duration `mapstructure:"initial_interval"`
	MaxInterval       time.Duration `mapstructure:"max_interval"`
	DefaultRetryAfter time.Duration `mapstructure:"default_retry_after"`
}

// SyncConfig holds sync orchestration configuration
type SyncConfig struct {
	TieBreak      string        `mapstructure:"tie_break"`
	BatchWorkers  int           `mapstructure:"batch_workers"`
	BatchShutdown time.Duration `mapstructure:"batch_shutdown"`
	FullSyncPage  int           `mapstructure:"full_sync_page"`
	DedupeTTL     time.Duration `mapstructure:"dedupe_ttl"`
	DedupeCache   int           `mapstructure:"dedupe_cache"`
	RuleCacheTTL  time.Duration `mapstructure:"rule_cache_ttl"`
	RuleCache     int           `mapstructure:"rule_cache"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// SyncdConfig holds configuration for the syncd server
type SyncdConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Auth       AuthConfig     `mapstructure:"auth"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	SideA      RemoteConfig   `mapstructure:"side_a"`
	SideB      RemoteConfig   `mapstructure:"side_b"`
	Retry      RetryConfig    `mapstructure:"retry"`
	Sync       SyncConfig     `mapstructure:"sync"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig     `mapstructure:",squash"`
	Database       DatabaseConfig `mapstructure:"database"`
	NATS           NATSConfig     `mapstructure:"nats"`
	SideA          RemoteConfig   `mapstructure:"side_a"`
	SideB          RemoteConfig   `mapstructure:"side_b"`
	Retry          RetryConfig    `mapstructure:"retry"`
	Sync           SyncConfig     `mapstructure:"sync"`
	Tenants        []string       `mapstructure:"tenants"`
	SweepInterval  time.Duration  `mapstructure:"sweep_interval"`
	PurgeInterval  time.Duration  `mapstructure:"purge_interval"`
	EventRetention time.Duration  `mapstructure:"event_retention"`
}

// LoadSyncdConfig loads configuration for the syncd server
func LoadSyncdConfig(configFile string, envPath string) (*SyncdConfig, error) {
	v := configureViper("syncd", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 120)
	setCommonDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg SyncdConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateCommon(cfg.Database, cfg.SideA, cfg.SideB); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	// Set defaults
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("sweep_interval", "1h")
	v.SetDefault("purge_interval", "5m")
	v.SetDefault("event_retention", "720h") // 30 days
	setCommonDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateCommon(cfg.Database, cfg.SideA, cfg.SideB); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.subject_prefix", "crosslink.sync.events")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("side_a.timeout", 30)
	v.SetDefault("side_b.timeout", 30)
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.initial_interval", "500ms")
	v.SetDefault("retry.max_interval", "30s")
	v.SetDefault("retry.default_retry_after", "10s")
	v.SetDefault("sync.tie_break", "inbound")
	v.SetDefault("sync.batch_workers", 8)
	v.SetDefault("sync.batch_shutdown", "30s")
	v.SetDefault("sync.full_sync_page", 100)
	v.SetDefault("sync.dedupe_ttl", "5m")
	v.SetDefault("sync.dedupe_cache", 4096)
	v.SetDefault("sync.rule_cache_ttl", "30s")
	v.SetDefault("sync.rule_cache", 128)
}

func validateCommon(db DatabaseConfig, sideA, sideB RemoteConfig) error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if sideA.BaseURL == "" {
		return errors.New("side_a.base_url is required")
	}
	if sideB.BaseURL == "" {
		return errors.New("side_b.base_url is required")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/syncd/, cmd/sweeper/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("CROSSLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Remote systems
		"side_a.base_url",
		"side_a.api_key",
		"side_a.api_key_file",
		"side_a.timeout",
		"side_b.base_url",
		"side_b.api_key",
		"side_b.api_key_file",
		"side_b.timeout",
		// Retry
		"retry.max_attempts",
		"retry.initial_interval",
		"retry.max_interval",
		"retry.default_retry_after",
		// Sync
		"sync.tie_break",
		"sync.batch_workers",
		"sync.batch_shutdown",
		"sync.full_sync_page",
		"sync.dedupe_ttl",
		"sync.dedupe_cache",
		"sync.rule_cache_ttl",
		"sync.rule_cache",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.api_keys",
		// Sweeper specific
		"tenants",
		"sweep_interval",
		"purge_interval",
		"event_retention",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
