package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`

	EngineBaseURL string        `envconfig:"ENGINE_BASE_URL" default:"http://localhost:3000"`
	EngineAPIKey  string        `envconfig:"ENGINE_API_KEY" default:""`
	EngineTimeout time.Duration `envconfig:"ENGINE_TIMEOUT" default:"10s"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"storefront"`

	SessionMigrationsPath string `envconfig:"SESSION_MIGRATIONS_PATH" default:"internal/order/repository/migrations"`
	CatalogMigrationsPath string `envconfig:"CATALOG_MIGRATIONS_PATH" default:"internal/catalog/repository/migrations"`

	MongoURI         string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB          string        `envconfig:"MONGO_DB" default:"storefront"`
	MongoConnTimeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
	MongoMaxPoolSize uint64        `envconfig:"MONGO_MAX_POOL_SIZE" default:"50"`
	MongoMinPoolSize uint64        `envconfig:"MONGO_MIN_POOL_SIZE" default:"5"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) KafkaBrokerList() []string {
	return strings.Split(c.KafkaBrokers, ",")
}
