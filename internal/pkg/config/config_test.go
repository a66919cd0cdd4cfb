package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validYAML — полная конфигурация со всеми заполненными полями.
const validYAML = `
bot:
  token: "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11"
  username: "MyTicketBot"
mongo:
  uri: "mongodb://localhost:27017"
  database: "tickets"
  listings_collection: "tickets_listings"
  reviews_collection: "tickets_reviews"
  connect_timeout_seconds: 30
server:
  host: "127.0.0.1"
  port: 9090
  shutdown_timeout_seconds: 5
marketplace:
  page_size: 5
logging:
  level: "debug"
  format: "text"
`

// partialYAML — минимальная конфигурация, остальное добирается из значений по умолчанию.
const partialYAML = `
bot:
  token: "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11"
mongo:
  uri: "mongodb://localhost:27017"
`

// createTempConfigFile создает временный YAML-файл конфигурации для тестов.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := createTempConfigFile(t, validYAML)

		cfg, err := loadFromYAML(path)
		require.NoError(t, err)

		assert.Equal(t, "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11", cfg.Bot.Token)
		assert.Equal(t, "MyTicketBot", cfg.Bot.Username)
		assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
		assert.Equal(t, "tickets", cfg.Mongo.Database)
		assert.Equal(t, "tickets_listings", cfg.Mongo.ListingsCollection)
		assert.Equal(t, "tickets_reviews", cfg.Mongo.ReviewsCollection)
		assert.Equal(t, 30, cfg.Mongo.ConnectTimeoutSecs)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 5, cfg.Server.ShutdownTimeoutSeconds)
		assert.Equal(t, 5, cfg.Marketplace.PageSize)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadFromYAML(filepath.Join(t.TempDir(), "absent.yml"))
		assert.Error(t, err)
	})

	t.Run("broken yaml", func(t *testing.T) {
		path := createTempConfigFile(t, "bot: [not a map")
		_, err := loadFromYAML(path)
		assert.Error(t, err)
	})
}

func TestApplyDefaults(t *testing.T) {
	path := createTempConfigFile(t, partialYAML)

	cfg, err := loadFromYAML(path)
	require.NoError(t, err)
	cfg.applyDefaults()

	assert.Equal(t, DefaultBotUsername, cfg.Bot.Username)
	assert.Equal(t, DefaultDatabaseName, cfg.Mongo.Database)
	assert.Equal(t, DefaultListingsColl, cfg.Mongo.ListingsCollection)
	assert.Equal(t, DefaultReviewsColl, cfg.Mongo.ReviewsCollection)
	assert.Equal(t, DefaultMongoTimeoutS, cfg.Mongo.ConnectTimeoutSecs)
	assert.Equal(t, DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeoutSeconds)
	assert.Equal(t, DefaultPageSize, cfg.Marketplace.PageSize)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("required variables present", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11")
		t.Setenv("MONGO_CONNECTION_STRING", "mongodb://localhost:27017")
		t.Setenv("BOT_USERNAME", "EnvBot")
		t.Setenv("SERVER_PORT", "9999")
		t.Setenv("PAGE_SIZE", "7")

		cfg, err := loadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "EnvBot", cfg.Bot.Username)
		assert.Equal(t, 9999, cfg.Server.Port)
		assert.Equal(t, 7, cfg.Marketplace.PageSize)
	})

	t.Run("missing required variables", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("MONGO_CONNECTION_STRING", "")

		_, err := loadFromEnv()
		assert.Error(t, err)
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11")
		t.Setenv("MONGO_CONNECTION_STRING", "mongodb://localhost:27017")
		t.Setenv("SERVER_PORT", "not-a-port")

		_, err := loadFromEnv()
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		path := createTempConfigFile(t, validYAML)
		cfg, err := loadFromYAML(path)
		require.NoError(t, err)
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty token", func(c *Config) { c.Bot.Token = "" }},
		{"placeholder token", func(c *Config) { c.Bot.Token = "YOUR_TELEGRAM_BOT_TOKEN" }},
		{"empty username", func(c *Config) { c.Bot.Username = "" }},
		{"empty mongo uri", func(c *Config) { c.Mongo.URI = "" }},
		{"empty database", func(c *Config) { c.Mongo.Database = "" }},
		{"empty listings collection", func(c *Config) { c.Mongo.ListingsCollection = "" }},
		{"empty reviews collection", func(c *Config) { c.Mongo.ReviewsCollection = "" }},
		{"zero mongo timeout", func(c *Config) { c.Mongo.ConnectTimeoutSecs = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeoutSeconds = 0 }},
		{"zero page size", func(c *Config) { c.Marketplace.PageSize = 0 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := &Config{Server: Server{Host: "127.0.0.1", Port: 9090}}
	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
}
