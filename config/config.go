package config

import (
	"time"

	"github.com/Gobusters/ectoenv"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"aster-api"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// PostgreSQL (reference datasets and saved configs)
	DatabaseDriver              string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"aster"`
	DatabaseSSLMode             string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion    int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce      int           `env:"DB_MIGRATION_FORCE" env-default:"0"`

	// Redis (dataset row cache)
	RedisEnabled  bool          `env:"REDIS_ENABLED" env-default:"true"`
	RedisHost     string        `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	RowCacheTTL   time.Duration `env:"ROW_CACHE_TTL" env-default:"5m"`

	// Kafka Producer (review decision events)
	KafkaEnabled        bool     `env:"KAFKA_ENABLED" env-default:"true"`
	KafkaBrokers        []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaDecisionsTopic string   `env:"KAFKA_DECISIONS_TOPIC" env-default:"review-decisions"`
	KafkaBatchSize      int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout   int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks   int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression    string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Tracing
	TracingEnabled  bool   `env:"TRACING_ENABLED" env-default:"false"`
	TracingExporter string `env:"TRACING_EXPORTER" env-default:"otlp-grpc"`
	TracingEndpoint string `env:"TRACING_ENDPOINT" env-default:"localhost:4317"`

	// Lookup
	FuzzyThreshold  float64 `env:"FUZZY_THRESHOLD" env-default:"0.6"`
	ReviewThreshold float64 `env:"REVIEW_THRESHOLD" env-default:"0.9"`
}

// New loads configuration from the environment
func New() (*Config, error) {
	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
