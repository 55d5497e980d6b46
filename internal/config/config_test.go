package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		errorMsg    string
	}{
		{
			name: "Success with minimal required config",
			envVars: map[string]string{
				"API_KEY": "test-api-key",
			},
			expectError: false,
		},
		{
			name: "Success with all config specified",
			envVars: map[string]string{
				"SERVER_HOST":              "localhost",
				"SERVER_PORT":              "9090",
				"DB_HOST":                  "db.example.com",
				"DB_PORT":                  "5433",
				"DB_USER":                  "testuser",
				"DB_PASSWORD":              "testpass",
				"DB_NAME":                  "testdb",
				"DB_MAX_CONNECTIONS":       "50",
				"DB_MIN_CONNECTIONS":       "10",
				"DB_MAX_CONN_LIFETIME":     "600",
				"LOG_LEVEL":                "debug",
				"LOG_FORMAT":               "console",
				"API_KEY":                  "test-key-123",
				"KAFKA_ENABLED":            "true",
				"KAFKA_BROKERS":            "kafka-1:9092,kafka-2:9092",
				"KAFKA_TOPIC_ORDER_EVENTS": "order-events",
				"REDIS_ENABLED":            "true",
				"REDIS_ADDR":               "redis:6379",
				"REDIS_TRACKING_TTL":       "120",
			},
			expectError: false,
		},
		{
			name: "Error - missing API key",
			envVars: map[string]string{
				"API_KEY": "",
			},
			expectError: true,
			errorMsg:    "API key is required",
		},
		{
			name: "Error - invalid server port",
			envVars: map[string]string{
				"SERVER_PORT": "99999",
				"API_KEY":     "test-key",
			},
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name: "Error - invalid log level",
			envVars: map[string]string{
				"LOG_LEVEL": "invalid",
				"API_KEY":   "test-key",
			},
			expectError: true,
			errorMsg:    "invalid log level",
		},
		{
			name: "Error - invalid log format",
			envVars: map[string]string{
				"LOG_FORMAT": "xml",
				"API_KEY":    "test-key",
			},
			expectError: true,
			errorMsg:    "invalid log format",
		},
		{
			name: "Error - kafka enabled without brokers",
			envVars: map[string]string{
				"API_KEY":       "test-key",
				"KAFKA_ENABLED": "true",
				"KAFKA_BROKERS": "",
			},
			expectError: true,
			errorMsg:    "kafka brokers are required",
		},
		{
			name: "Error - redis enabled without address",
			envVars: map[string]string{
				"API_KEY":       "test-key",
				"REDIS_ENABLED": "true",
				"REDIS_ADDR":    "",
			},
			expectError: true,
			errorMsg:    "redis address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			cfg, err := Load()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
			}

			// Clean up
			os.Clearenv()
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "password",
			Database:        "testdb",
			MaxConnections:  25,
			MinConnections:  5,
			MaxConnLifetime: 300,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			APIKey: "test-key",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "Valid configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "Invalid - server port too high",
			mutate:      func(c *Config) { c.Server.Port = 99999 },
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name:        "Invalid - database port zero",
			mutate:      func(c *Config) { c.Database.Port = 0 },
			expectError: true,
			errorMsg:    "invalid database port",
		},
		{
			name:        "Invalid - empty database host",
			mutate:      func(c *Config) { c.Database.Host = "" },
			expectError: true,
			errorMsg:    "database host is required",
		},
		{
			name:        "Invalid - empty database user",
			mutate:      func(c *Config) { c.Database.User = "" },
			expectError: true,
			errorMsg:    "database user is required",
		},
		{
			name:        "Invalid - min connections exceed max",
			mutate:      func(c *Config) { c.Database.MinConnections = 50 },
			expectError: true,
			errorMsg:    "cannot exceed max connections",
		},
		{
			name: "Invalid - kafka enabled without topic",
			mutate: func(c *Config) {
				c.Kafka.Enabled = true
				c.Kafka.Brokers = []string{"kafka:9092"}
				c.Kafka.Topic = ""
			},
			expectError: true,
			errorMsg:    "kafka topic is required",
		},
		{
			name: "Invalid - redis TTL below one second",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.Addr = "redis:6379"
				c.Redis.TTLSeconds = 0
			},
			expectError: true,
			errorMsg:    "redis tracking TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := validConfig()
	connStr := cfg.Database.ConnectionString()

	assert.Contains(t, connStr, "localhost")
	assert.Contains(t, connStr, "5432")
	assert.Contains(t, connStr, "testdb")
}

func TestServerConfig_Address(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "localhost:8080", cfg.Server.Address())
}
