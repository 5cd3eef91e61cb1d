// /internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	// Основные параметры подключения
	Host     string `mapstructure:"DB_HOST"`
	Port     int    `mapstructure:"DB_PORT"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`

	// Без БД заказы хранятся в памяти, а админы в файле
	Enabled bool `mapstructure:"DB_ENABLED"`

	// Настройки пула соединений
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxConnLifetime time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`

	EnableAutoMigrate bool `mapstructure:"DB_ENABLE_AUTO_MIGRATE"`
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	// Основные настройки подключения
	Host     string `mapstructure:"REDIS_HOST"`     // localhost
	Port     int    `mapstructure:"REDIS_PORT"`     // 6379
	Password string `mapstructure:"REDIS_PASSWORD"` // пустой или пароль
	DB       int    `mapstructure:"REDIS_DB"`       // 0

	// Настройки пула соединений
	PoolSize        int           `mapstructure:"REDIS_POOL_SIZE"`         // 10
	MinIdleConns    int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`    // 5
	MaxRetries      int           `mapstructure:"REDIS_MAX_RETRIES"`       // 3
	MinRetryBackoff time.Duration `mapstructure:"REDIS_MIN_RETRY_BACKOFF"` // 8ms
	MaxRetryBackoff time.Duration `mapstructure:"REDIS_MAX_RETRY_BACKOFF"` // 512ms
	DialTimeout     time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`      // 5s
	ReadTimeout     time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`      // 3s
	WriteTimeout    time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`     // 3s
	PoolTimeout     time.Duration `mapstructure:"REDIS_POOL_TIMEOUT"`      // 4s
	IdleTimeout     time.Duration `mapstructure:"REDIS_IDLE_TIMEOUT"`      // 5m
	MaxConnAge      time.Duration `mapstructure:"REDIS_MAX_CONN_AGE"`      // 0 (без ограничения)

	KeyPrefix string `mapstructure:"REDIS_KEY_PREFIX"` // solboost:
}

// ============================================
// TELEGRAM И HTTP
// ============================================

// TelegramConfig настройки бота
type TelegramConfig struct {
	BotToken       string        `mapstructure:"TELEGRAM_BOT_TOKEN"`
	APIURL         string        `mapstructure:"TELEGRAM_API_URL"`
	PollingTimeout int           `mapstructure:"TELEGRAM_POLLING_TIMEOUT"` // секунды long polling
	RetryInterval  time.Duration `mapstructure:"TELEGRAM_RETRY_INTERVAL"`
	RateLimit      string        `mapstructure:"TELEGRAM_RATE_LIMIT"` // формат ulule/limiter: 20-M
}

// HTTPConfig сервер health-check и метрик
type HTTPConfig struct {
	Port           int  `mapstructure:"PORT"`
	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

// ============================================
// SOLANA
// ============================================

// SolanaConfig настройки RPC
type SolanaConfig struct {
	RPCURL     string        `mapstructure:"SOLANA_RPC_URL"`
	Timeout    time.Duration `mapstructure:"SOLANA_RPC_TIMEOUT"`
	Commitment string        `mapstructure:"SOLANA_COMMITMENT"`
}

// ============================================
// СЕССИИ, АДМИНЫ, КАТАЛОГ
// ============================================

// SessionConfig хранилище сессий диалога
type SessionConfig struct {
	Store         string        `mapstructure:"SESSION_STORE"` // memory | redis
	TTL           time.Duration `mapstructure:"SESSION_TTL"`
	SweepInterval time.Duration `mapstructure:"SESSION_SWEEP_INTERVAL"`
	MaxSessions   int           `mapstructure:"SESSION_MAX"`
}

// OperatorsConfig список администраторов
type OperatorsConfig struct {
	Store         string  `mapstructure:"OPERATORS_STORE"` // file | postgres
	File          string  `mapstructure:"ADMINS_FILE"`
	InitialAdmins []int64 `mapstructure:"INITIAL_ADMINS"`
}

// CatalogConfig источник тарифов
type CatalogConfig struct {
	File string `mapstructure:"CATALOG_FILE"` // пусто - встроенный каталог
}

// NotificationConfig рассылка админам
type NotificationConfig struct {
	PoolSize int           `mapstructure:"NOTIFY_POOL_SIZE"`
	Timeout  time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
}

// LoggingConfig логирование
type LoggingConfig struct {
	Level string `mapstructure:"LOG_LEVEL"`
	File  string `mapstructure:"LOG_FILE"`
	Debug bool   `mapstructure:"DEBUG_MODE"`
}

// ============================================
// ОСНОВНАЯ КОНФИГУРАЦИЯ ПРИЛОЖЕНИЯ
// ============================================

// Config - основная структура конфигурации
type Config struct {
	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	Telegram      TelegramConfig     `mapstructure:"TELEGRAM"`
	HTTP          HTTPConfig         `mapstructure:"HTTP"`
	Solana        SolanaConfig       `mapstructure:"SOLANA"`
	Sessions      SessionConfig      `mapstructure:"SESSIONS"`
	Operators     OperatorsConfig    `mapstructure:"OPERATORS"`
	Catalog       CatalogConfig      `mapstructure:"CATALOG"`
	Notifications NotificationConfig `mapstructure:"NOTIFICATIONS"`
	Logging       LoggingConfig      `mapstructure:"LOGGING"`

	// ======================
	// ХРАНИЛИЩА
	// ======================
	Database DatabaseConfig `mapstructure:"DATABASE"`
	Redis    RedisConfig    `mapstructure:"REDIS"`
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	OperatorsStoreFile     = "file"
	OperatorsStorePostgres = "postgres"

	DefaultSolanaRPC = "https://api.mainnet-beta.solana.com"
)

// LoadConfig загружает конфигурацию из .env файла и переменных окружения
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("⚠️  Config file not found, using environment variables\n")
		}
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")

	// ======================
	// TELEGRAM
	// ======================
	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Telegram.APIURL = getEnv("TELEGRAM_API_URL", "https://api.telegram.org")
	cfg.Telegram.PollingTimeout = getEnvInt("TELEGRAM_POLLING_TIMEOUT", 30)
	cfg.Telegram.RetryInterval = getEnvDuration("TELEGRAM_RETRY_INTERVAL", 5*time.Second)
	cfg.Telegram.RateLimit = getEnv("TELEGRAM_RATE_LIMIT", "30-M")

	// ======================
	// HTTP
	// ======================
	cfg.HTTP.Port = getEnvInt("PORT", 3000)
	cfg.HTTP.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)

	// ======================
	// SOLANA
	// ======================
	cfg.Solana.RPCURL = getEnv("SOLANA_RPC_URL", DefaultSolanaRPC)
	cfg.Solana.Timeout = getEnvDuration("SOLANA_RPC_TIMEOUT", 30*time.Second)
	cfg.Solana.Commitment = getEnv("SOLANA_COMMITMENT", "confirmed")

	// ======================
	// СЕССИИ
	// ======================
	cfg.Sessions.Store = strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory))
	cfg.Sessions.TTL = getEnvDuration("SESSION_TTL", 24*time.Hour)
	cfg.Sessions.SweepInterval = getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute)
	cfg.Sessions.MaxSessions = getEnvInt("SESSION_MAX", 0)

	// ======================
	// АДМИНЫ И КАТАЛОГ
	// ======================
	cfg.Operators.Store = strings.ToLower(getEnv("OPERATORS_STORE", OperatorsStoreFile))
	cfg.Operators.File = getEnv("ADMINS_FILE", "admins.json")
	cfg.Operators.InitialAdmins = parseInt64List(getEnv("INITIAL_ADMINS", ""))
	cfg.Catalog.File = getEnv("CATALOG_FILE", "")

	cfg.Notifications.PoolSize = getEnvInt("NOTIFY_POOL_SIZE", 8)
	cfg.Notifications.Timeout = getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second)

	// ======================
	// ЛОГИРОВАНИЕ
	// ======================
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.File = getEnv("LOG_FILE", "logs/bot.log")
	cfg.Logging.Debug = getEnvBool("DEBUG_MODE", false)

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)
	cfg.Database.EnableAutoMigrate = getEnvBool("DB_ENABLE_AUTO_MIGRATE", true)
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", false)

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 5)
	cfg.Redis.MaxRetries = getEnvInt("REDIS_MAX_RETRIES", 3)
	cfg.Redis.MinRetryBackoff = getEnvDuration("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond)
	cfg.Redis.MaxRetryBackoff = getEnvDuration("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.PoolTimeout = getEnvDuration("REDIS_POOL_TIMEOUT", 4*time.Second)
	cfg.Redis.IdleTimeout = getEnvDuration("REDIS_IDLE_TIMEOUT", 5*time.Minute)
	cfg.Redis.MaxConnAge = getEnvDuration("REDIS_MAX_CONN_AGE", 0)
	cfg.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", "solboost:")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return cfg, nil
}

// validate проверяет конфигурацию и возвращает все ошибки сразу
func (c *Config) validate() error {
	var validationErrors []string

	if c.Telegram.BotToken == "" {
		validationErrors = append(validationErrors, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.Telegram.PollingTimeout < 0 {
		validationErrors = append(validationErrors, "TELEGRAM_POLLING_TIMEOUT не может быть отрицательным")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		validationErrors = append(validationErrors, "PORT должен быть в диапазоне 1-65535")
	}

	if c.Solana.RPCURL == "" {
		validationErrors = append(validationErrors, "SOLANA_RPC_URL is required")
	}
	switch c.Solana.Commitment {
	case "confirmed", "finalized":
	default:
		validationErrors = append(validationErrors, "SOLANA_COMMITMENT должен быть 'confirmed' или 'finalized'")
	}

	switch c.Sessions.Store {
	case SessionStoreMemory:
		if c.Sessions.SweepInterval <= 0 {
			validationErrors = append(validationErrors, "SESSION_SWEEP_INTERVAL должен быть положительным")
		}
	case SessionStoreRedis:
		if c.Sessions.TTL <= 0 {
			validationErrors = append(validationErrors, "SESSION_TTL должен быть положительным для redis")
		}
	default:
		validationErrors = append(validationErrors, "SESSION_STORE должен быть 'memory' или 'redis'")
	}

	switch c.Operators.Store {
	case OperatorsStoreFile:
		if c.Operators.File == "" {
			validationErrors = append(validationErrors, "ADMINS_FILE is required")
		}
	case OperatorsStorePostgres:
		if !c.Database.Enabled {
			validationErrors = append(validationErrors, "OPERATORS_STORE=postgres требует DB_ENABLED=true")
		}
	default:
		validationErrors = append(validationErrors, "OPERATORS_STORE должен быть 'file' или 'postgres'")
	}

	if c.Notifications.PoolSize <= 0 {
		validationErrors = append(validationErrors, "NOTIFY_POOL_SIZE должен быть положительным")
	}

	// Проверка настроек базы данных, только если она включена
	if c.Database.Enabled {
		if c.Database.Host == "" {
			validationErrors = append(validationErrors, "DB_HOST is required")
		}
		if c.Database.Port <= 0 {
			validationErrors = append(validationErrors, "DB_PORT must be positive")
		}
		if c.Database.User == "" {
			validationErrors = append(validationErrors, "DB_USER is required")
		}
		if c.Database.Name == "" {
			validationErrors = append(validationErrors, "DB_NAME is required")
		}
	}

	if len(validationErrors) > 0 {
		errMsg := strings.Join(validationErrors, "; ")
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

// GetPostgresDSN возвращает DSN для подключения к PostgreSQL
func (c *Config) GetPostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddress адрес Redis host:port
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// UsesRedisSessions включено ли хранение сессий в Redis
func (c *Config) UsesRedisSessions() bool {
	return c.Sessions.Store == SessionStoreRedis
}

// IsDev режим разработки
func (c *Config) IsDev() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// PrintSummary выводит сводку конфигурации без секретов
func (c *Config) PrintSummary() {
	log.Printf("📋 Конфигурация приложения:")
	log.Printf("   • Окружение: %s (версия %s)", c.Environment, c.Version)
	log.Printf("   • Уровень логирования: %s", c.Logging.Level)
	log.Printf("   • Telegram Token: %s", maskToken(c.Telegram.BotToken))
	log.Printf("   • Polling timeout: %d сек, лимит: %s", c.Telegram.PollingTimeout, c.Telegram.RateLimit)
	log.Printf("   • HTTP порт: %d (метрики: %v)", c.HTTP.Port, c.HTTP.MetricsEnabled)
	log.Printf("   • Solana RPC: %s (%s, таймаут %v)", c.Solana.RPCURL, c.Solana.Commitment, c.Solana.Timeout)
	log.Printf("   • Сессии: %s (TTL %v)", c.Sessions.Store, c.Sessions.TTL)
	if c.UsesRedisSessions() {
		log.Printf("   • Redis: %s (DB: %d, Pool: %d)", c.GetRedisAddress(), c.Redis.DB, c.Redis.PoolSize)
	}
	if c.Database.Enabled {
		log.Printf("   • PostgreSQL: %s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Name)
	} else {
		log.Printf("   • PostgreSQL: отключен")
	}
	log.Printf("   • Админы: %s", c.Operators.Store)
	if c.Catalog.File != "" {
		log.Printf("   • Каталог: %s", c.Catalog.File)
	} else {
		log.Printf("   • Каталог: встроенный")
	}
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func maskToken(token string) string {
	if len(token) > 20 {
		return token[:10] + "..." + token[len(token)-10:]
	}
	if token == "" {
		return "<не задан>"
	}
	return "***"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseInt64List(value string) []int64 {
	var result []int64
	if value == "" {
		return result
	}

	parts := strings.Split(value, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if intValue, err := strconv.ParseInt(part, 10, 64); err == nil {
			result = append(result, intValue)
		}
	}
	return result
}
