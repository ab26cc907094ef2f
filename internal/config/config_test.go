package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSyncdConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		errContains string
		validate    func(*testing.T, *SyncdConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 20
  write_timeout: 40
  idle_timeout: 180
auth:
  api_keys:
    - "key1"
    - "key2"
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
nats:
  url: "nats://localhost:4222"
  subject_prefix: "custom.sync.events"
  max_reconnects: 5
  reconnect_wait: "5s"
  connection_name: "test-connection"
side_a:
  base_url: "https://side-a.example.com/api"
  api_key: "a-secret"
  id_path: ["vid"]
  updated_at_path: ["properties", "lastmodifieddate"]
  timeout: 15
side_b:
  base_url: "https://side-b.example.com/v1"
  api_key: "b-secret"
retry:
  max_attempts: 3
  initial_interval: "250ms"
  max_interval: "10s"
  default_retry_after: "5s"
sync:
  tie_break: "side_a"
  batch_workers: 4
  full_sync_page: 50
  dedupe_ttl: "10m"
  rule_cache_ttl: "1m"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SyncdConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 20, cfg.Server.ReadTimeout)
				assert.Equal(t, 40, cfg.Server.WriteTimeout)
				assert.Equal(t, 180, cfg.Server.IdleTimeout)
				assert.Len(t, cfg.Auth.APIKeys, 2)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "testuser", cfg.Database.User)
				assert.Equal(t, "testpass", cfg.Database.Password)
				assert.Equal(t, "testdb", cfg.Database.DBName)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "custom.sync.events", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 5, cfg.NATS.MaxReconnects)
				assert.Equal(t, 5*time.Second, cfg.NATS.ReconnectWait)
				assert.Equal(t, "https://side-a.example.com/api", cfg.SideA.BaseURL)
				assert.Equal(t, "a-secret", cfg.SideA.APIKey)
				assert.Equal(t, []string{"vid"}, cfg.SideA.IDPath)
				assert.Equal(t, []string{"properties", "lastmodifieddate"}, cfg.SideA.UpdatedAtPath)
				assert.Equal(t, 15, cfg.SideA.Timeout)
				assert.Equal(t, "https://side-b.example.com/v1", cfg.SideB.BaseURL)
				assert.Equal(t, 3, cfg.Retry.MaxAttempts)
				assert.Equal(t, 250*time.Millisecond, cfg.Retry.InitialInterval)
				assert.Equal(t, 10*time.Second, cfg.Retry.MaxInterval)
				assert.Equal(t, 5*time.Second, cfg.Retry.DefaultRetryAfter)
				assert.Equal(t, "side_a", cfg.Sync.TieBreak)
				assert.Equal(t, 4, cfg.Sync.BatchWorkers)
				assert.Equal(t, 50, cfg.Sync.FullSyncPage)
				assert.Equal(t, 10*time.Minute, cfg.Sync.DedupeTTL)
				assert.Equal(t, time.Minute, cfg.Sync.RuleCacheTTL)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
side_a:
  base_url: "https://side-a.example.com/api"
side_b:
  base_url: "https://side-b.example.com/v1"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SyncdConfig) {
				// Check defaults
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 10, cfg.Server.ReadTimeout)
				assert.Equal(t, 30, cfg.Server.WriteTimeout)
				assert.Equal(t, 120, cfg.Server.IdleTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "crosslink.sync.events", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, 30, cfg.SideA.Timeout)
				assert.Equal(t, 30, cfg.SideB.Timeout)
				assert.Equal(t, 5, cfg.Retry.MaxAttempts)
				assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialInterval)
				assert.Equal(t, 30*time.Second, cfg.Retry.MaxInterval)
				assert.Equal(t, 10*time.Second, cfg.Retry.DefaultRetryAfter)
				assert.Equal(t, "inbound", cfg.Sync.TieBreak)
				assert.Equal(t, 8, cfg.Sync.BatchWorkers)
				assert.Equal(t, 30*time.Second, cfg.Sync.BatchShutdown)
				assert.Equal(t, 100, cfg.Sync.FullSyncPage)
				assert.Equal(t, 5*time.Minute, cfg.Sync.DedupeTTL)
				assert.Equal(t, 4096, cfg.Sync.DedupeCache)
				assert.Equal(t, 30*time.Second, cfg.Sync.RuleCacheTTL)
				assert.Equal(t, 128, cfg.Sync.RuleCache)
			},
		},
		{
			name: "missing database host",
			configFile: `
database:
  dbname: testdb
side_a:
  base_url: "https://side-a.example.com/api"
side_b:
  base_url: "https://side-b.example.com/v1"
`,
			expectError: true,
			errContains: "database.host is required",
		},
		{
			name: "missing database name",
			configFile: `
database:
  host: localhost
side_a:
  base_url: "https://side-a.example.com/api"
side_b:
  base_url: "https://side-b.example.com/v1"
`,
			expectError: true,
			errContains: "database.dbname is required",
		},
		{
			name: "missing side A endpoint",
			configFile: `
database:
  host: localhost
  dbname: testdb
side_b:
  base_url: "https://side-b.example.com/v1"
`,
			expectError: true,
			errContains: "side_a.base_url is required",
		},
		{
			name: "missing side B endpoint",
			configFile: `
database:
  host: localhost
  dbname: testdb
side_a:
  base_url: "https://side-a.example.com/api"
`,
			expectError: true,
			errContains: "side_b.base_url is required",
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true, // Invalid port should cause unmarshal error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
			require.NoError(t, err)

			cfg, err := LoadSyncdConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestLoadSweeperConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *SweeperConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
side_a:
  base_url: "https://side-a.example.com/api"
side_b:
  base_url: "https://side-b.example.com/v1"
tenants:
  - "acme"
  - "globex"
sweep_interval: "30m"
purge_interval: "2m"
event_retention: "168h"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SweeperConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, []string{"acme", "globex"}, cfg.Tenants)
				assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
				assert.Equal(t, 2*time.Minute, cfg.PurgeInterval)
				assert.Equal(t, 168*time.Hour, cfg.EventRetention)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
side_a:
  base_url: "https://side-a.example.com/api"
side_b:
  base_url: "https://side-b.example.com/v1"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SweeperConfig) {
				// Check defaults
				assert.Equal(t, 5, cfg.Database.MaxOpenConns)
				assert.Equal(t, 2, cfg.Database.MaxIdleConns)
				assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
				assert.Equal(t, 10*time.Minute, cfg.Database.ConnMaxIdleTime)
				assert.Equal(t, time.Hour, cfg.SweepInterval)
				assert.Equal(t, 5*time.Minute, cfg.PurgeInterval)
				assert.Equal(t, 720*time.Hour, cfg.EventRetention)
				assert.Empty(t, cfg.Tenants)
			},
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
			require.NoError(t, err)

			cfg, err := LoadSweeperConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "testpass",
				DBName:   "testdb",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "with special characters in password",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "p@ssw0rd!",
				DBName:   "testdb",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=testuser password=p@ssw0rd! dbname=testdb sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.config.DSN()
			assert.Equal(t, tt.expected, dsn)
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	// Create temporary directory for env files
	envDir := filepath.Join(tmpDir, "env")
	err := os.MkdirAll(envDir, 0750)
	require.NoError(t, err)

	// Create .env file with environment variables
	// Note: Viper uses CROSSLINK_ prefix, so env vars need the prefix
	envFile := filepath.Join(envDir, ".env")
	envContent := `CROSSLINK_DEBUG=true
CROSSLINK_DATABASE_HOST=env-host
CROSSLINK_DATABASE_PORT=3306
CROSSLINK_DATABASE_USER=env-user
CROSSLINK_DATABASE_PASSWORD=env-pass
CROSSLINK_DATABASE_DBNAME=env-db
CROSSLINK_DATABASE_SSLMODE=require
CROSSLINK_SIDE_A_BASE_URL=https://env-a.example.com
`
	err = os.WriteFile(envFile, []byte(envContent), 0600)
	require.NoError(t, err)

	// Create config file with different values to verify env vars override
	configPath := filepath.Join(tmpDir, "config.yaml")
	configFile := `
debug: false
database:
  host: file-host
  port: 5432
  user: file-user
  password: file-pass
  dbname: file-db
  sslmode: disable
side_a:
  base_url: "https://file-a.example.com"
side_b:
  base_url: "https://file-b.example.com"
`

	err = os.WriteFile(configPath, []byte(configFile), 0600)
	require.NoError(t, err)

	// Load config with envPath pointing to the temporary env directory
	cfg, err := LoadSyncdConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Environment variables loaded via godotenv override config file values
	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "env-user", cfg.Database.User)
	assert.Equal(t, "env-pass", cfg.Database.Password)
	assert.Equal(t, "env-db", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, "https://env-a.example.com", cfg.SideA.BaseURL)
	assert.Equal(t, "https://file-b.example.com", cfg.SideB.BaseURL)
}
