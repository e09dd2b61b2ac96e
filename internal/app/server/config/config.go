package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env    string
	DB     DB
	Server Server
	Redis  Redis
	Broker Broker
	Logger Logger
}

type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type Server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

// Redis - кэш ключей идемпотентности; пустой Addr отключает дедупликацию
type Redis struct {
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL_HOURS"`
}

// Broker - публикация событий об изменениях; пустой URL отключает публикацию
type Broker struct {
	URL string `env:"AMQP_URL"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func setDefaults() {
	viper.SetDefault("app_env", EnvLocal)
	viper.SetDefault("run_address", ":8080")
	viper.SetDefault("migrations_path", "migrations")
	viper.SetDefault("redis_db", 0)
	viper.SetDefault("idempotency_ttl_hours", 24)
	viper.SetDefault("log_level", "info")
}

// Load читает конфигурацию из окружения и .env
func Load() (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	setDefaults()

	cfg := &Config{
		Env: viper.GetString("app_env"),
		DB: DB{
			DatabaseURI: viper.GetString("database_uri"),
			Migrations:  viper.GetString("migrations_path"),
		},
		Server: Server{RunAddress: viper.GetString("run_address")},
		Redis: Redis{
			Addr:           viper.GetString("redis_addr"),
			Password:       viper.GetString("redis_password"),
			DB:             viper.GetInt("redis_db"),
			IdempotencyTTL: time.Duration(viper.GetInt("idempotency_ttl_hours")) * time.Hour,
		},
		Broker: Broker{URL: viper.GetString("amqp_url")},
		Logger: Logger{LogLevel: viper.GetString("log_level")},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}
	if c.DB.DatabaseURI == "" {
		return errors.New("DATABASE_URI is required")
	}
	if c.Server.RunAddress == "" {
		return errors.New("RUN_ADDRESS is required")
	}
	if c.Redis.DB < 0 {
		return errors.New("REDIS_DB must not be negative")
	}
	if c.Redis.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL_HOURS must be positive")
	}
	return nil
}
