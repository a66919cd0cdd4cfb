// Package config предоставляет управление конфигурацией приложения
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Bot содержит конфигурацию Telegram-бота.
type Bot struct {
	Token string `yaml:"token"`
	// Username — имя бота без @, используется при построении share-ссылок.
	Username string `yaml:"username"`
}

// Mongo содержит конфигурацию подключения к MongoDB.
type Mongo struct {
	URI                string `yaml:"uri"`
	Database           string `yaml:"database"`
	ListingsCollection string `yaml:"listings_collection"`
	ReviewsCollection  string `yaml:"reviews_collection"`
	ConnectTimeoutSecs int    `yaml:"connect_timeout_seconds"`
}

// Server содержит конфигурацию эксплуатационного HTTP-сервера.
type Server struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// Marketplace содержит настройки витрины объявлений.
type Marketplace struct {
	// PageSize — размер страницы при постраничном показе объявлений и отзывов.
	PageSize int `yaml:"page_size"`
}

// Logging содержит конфигурацию логирования.
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Config содержит конфигурацию приложения.
type Config struct {
	Bot         Bot         `yaml:"bot"`
	Mongo       Mongo       `yaml:"mongo"`
	Server      Server      `yaml:"server"`
	Marketplace Marketplace `yaml:"marketplace"`
	Logging     Logging     `yaml:"logging"`
}

// LoadConfig загружает конфигурацию приложения из config.yml, переменных
// окружения или .env файла.
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла, если он существует
	if err := godotenv.Load(); err != nil {
		// Отсутствие .env файла не ошибка: полагаемся на окружение или config.yml
	}

	// Попытка загрузки из config.yml сначала
	cfg, err := loadFromYAML("config.yml")
	if err != nil {
		cfg, err = loadFromEnv()
		if err != nil {
			return nil, fmt.Errorf("failed to load config from env: %w", err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// loadFromYAML загружает конфигурацию из YAML-файла.
func loadFromYAML(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml config: %w", err)
	}

	return &cfg, nil
}

// loadFromEnv загружает конфигурацию из переменных окружения.
func loadFromEnv() (*Config, error) {
	token := getEnv("BOT_TOKEN", "")
	uri := getEnv("MONGO_CONNECTION_STRING", "")
	if token == "" || uri == "" {
		return nil, fmt.Errorf("BOT_TOKEN and MONGO_CONNECTION_STRING must be set")
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", strconv.Itoa(DefaultServerPort)))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	pageSize, err := strconv.Atoi(getEnv("PAGE_SIZE", strconv.Itoa(DefaultPageSize)))
	if err != nil {
		return nil, fmt.Errorf("invalid PAGE_SIZE: %w", err)
	}

	return &Config{
		Bot: Bot{
			Token:    token,
			Username: getEnv("BOT_USERNAME", DefaultBotUsername),
		},
		Mongo: Mongo{
			URI:                uri,
			Database:           getEnv("DATABASE_NAME", DefaultDatabaseName),
			ListingsCollection: getEnv("COLLECTION_NAME", DefaultListingsColl),
			ReviewsCollection:  getEnv("REVIEW_COLLECTION_NAME", DefaultReviewsColl),
		},
		Server: Server{
			Host: getEnv("SERVER_HOST", DefaultServerHost),
			Port: port,
		},
		Marketplace: Marketplace{
			PageSize: pageSize,
		},
		Logging: Logging{
			Level:  getEnv("LOG_LEVEL", DefaultLogLevel),
			Format: getEnv("LOG_FORMAT", DefaultLogFormat),
		},
	}, nil
}

// applyDefaults подставляет значения по умолчанию для незаполненных полей.
func (c *Config) applyDefaults() {
	if c.Bot.Username == "" {
		c.Bot.Username = DefaultBotUsername
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = DefaultDatabaseName
	}
	if c.Mongo.ListingsCollection == "" {
		c.Mongo.ListingsCollection = DefaultListingsColl
	}
	if c.Mongo.ReviewsCollection == "" {
		c.Mongo.ReviewsCollection = DefaultReviewsColl
	}
	if c.Mongo.ConnectTimeoutSecs == 0 {
		c.Mongo.ConnectTimeoutSecs = DefaultMongoTimeoutS
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = DefaultShutdownTimeout
	}
	if c.Marketplace.PageSize == 0 {
		c.Marketplace.PageSize = DefaultPageSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// Address возвращает адрес эксплуатационного сервера в формате "host:port".
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate проверяет, являются ли значения конфигурации допустимыми.
func (c *Config) Validate() error {
	if c.Bot.Token == "" || c.Bot.Token == "YOUR_TELEGRAM_BOT_TOKEN" {
		return fmt.Errorf("bot.token is not configured")
	}
	if c.Bot.Username == "" {
		return fmt.Errorf("bot.username cannot be empty")
	}

	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri cannot be empty")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database cannot be empty")
	}
	if c.Mongo.ListingsCollection == "" {
		return fmt.Errorf("mongo.listings_collection cannot be empty")
	}
	if c.Mongo.ReviewsCollection == "" {
		return fmt.Errorf("mongo.reviews_collection cannot be empty")
	}
	if c.Mongo.ConnectTimeoutSecs <= 0 {
		return fmt.Errorf("mongo.connect_timeout_seconds must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port number (1-65535)")
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be positive")
	}

	if c.Marketplace.PageSize <= 0 {
		return fmt.Errorf("marketplace.page_size must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "json", "text":
		// all good
	default:
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
