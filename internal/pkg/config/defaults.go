package config

// Default values for configuration.
const (
	// Ops server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultShutdownTimeout = 15

	// Marketplace defaults
	DefaultPageSize      = 10
	DefaultDatabaseName  = "gigswap"
	DefaultListingsColl  = "listings"
	DefaultReviewsColl   = "reviews"
	DefaultBotUsername   = "GigSwapBot"
	DefaultMongoTimeoutS = 60

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
