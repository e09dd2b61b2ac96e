package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultEnv           = "local"
	defaultConfigDir     = ".hostdesk"
	defaultQueueFile     = "queue.db"
)

type Config struct {
	Env            string        `mapstructure:"app_env"`
	ServerAddress  string        `mapstructure:"server_address"`
	EnableTLS      bool          `mapstructure:"enable_tls"`
	ConfigDir      string        `mapstructure:"config_dir"`
	QueuePath      string        `mapstructure:"queue_path"`
	ProbeInterval  time.Duration `mapstructure:"probe_interval_seconds"`
	SettleDelay    time.Duration `mapstructure:"settle_delay_ms"`
	RequestTimeout time.Duration `mapstructure:"request_timeout_seconds"`
	// 0 - отклонённые мутации повторяются бесконечно
	MaxRejections   int  `mapstructure:"max_rejections"`
	IdempotencyKeys bool `mapstructure:"idempotency_keys"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

func Load() (*Config, error) {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("ENABLE_TLS", false)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("PROBE_INTERVAL_SECONDS", 5)
	viper.SetDefault("SETTLE_DELAY_MS", 1000)
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 15)
	viper.SetDefault("MAX_REJECTIONS", 0)
	viper.SetDefault("IDEMPOTENCY_KEYS", false)

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	queuePath := viper.GetString("QUEUE_PATH")
	if queuePath == "" {
		queuePath = filepath.Join(configDir, defaultQueueFile)
	}

	cfg := &Config{
		Env:             viper.GetString("APP_ENV"),
		ServerAddress:   viper.GetString("SERVER_ADDRESS"),
		EnableTLS:       viper.GetBool("ENABLE_TLS"),
		ConfigDir:       configDir,
		QueuePath:       queuePath,
		ProbeInterval:   time.Duration(viper.GetInt("PROBE_INTERVAL_SECONDS")) * time.Second,
		SettleDelay:     time.Duration(viper.GetInt("SETTLE_DELAY_MS")) * time.Millisecond,
		RequestTimeout:  time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		MaxRejections:   viper.GetInt("MAX_REJECTIONS"),
		IdempotencyKeys: viper.GetBool("IDEMPOTENCY_KEYS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.QueuePath == "" {
		return fmt.Errorf("queue_path не может быть пустым")
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("probe_interval_seconds должен быть положительным")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle_delay_ms не может быть отрицательным")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout_seconds должен быть положительным")
	}
	if c.MaxRejections < 0 {
		return fmt.Errorf("max_rejections не может быть отрицательным")
	}
	return nil
}

// BaseURL адрес сервера со схемой
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
