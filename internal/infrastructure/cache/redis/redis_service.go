// internal/infrastructure/cache/redis/redis_service.go
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solboost-bot/internal/infrastructure/config"
	"solboost-bot/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// RedisService сервис подключения к Redis
type RedisService struct {
	config *config.Config
	client *redis.Client
	state  ServiceState
	mu     sync.RWMutex
}

// ServiceState состояние сервиса
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateStopping ServiceState = "stopping"
	StateError    ServiceState = "error"
)

// NewRedisService создает новый Redis сервис
func NewRedisService(cfg *config.Config) *RedisService {
	return &RedisService{
		config: cfg,
		state:  StateStopped,
	}
}

// Start подключается к Redis и проверяет соединение
func (rs *RedisService) Start() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.state == StateRunning {
		return fmt.Errorf("Redis service already running")
	}

	logger.Info("🔄 Starting Redis service...")
	rs.state = StateStarting

	redisConfig := rs.config.Redis
	options := &redis.Options{
		Addr:     rs.config.GetRedisAddress(),
		Password: redisConfig.Password,
		DB:       redisConfig.DB,

		PoolSize:     redisConfig.PoolSize,
		MinIdleConns: redisConfig.MinIdleConns,

		DialTimeout:  redisConfig.DialTimeout,
		ReadTimeout:  redisConfig.ReadTimeout,
		WriteTimeout: redisConfig.WriteTimeout,
		PoolTimeout:  redisConfig.PoolTimeout,
		IdleTimeout:  redisConfig.IdleTimeout,
		MaxConnAge:   redisConfig.MaxConnAge,

		MaxRetries:      redisConfig.MaxRetries,
		MinRetryBackoff: redisConfig.MinRetryBackoff,
		MaxRetryBackoff: redisConfig.MaxRetryBackoff,
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("📡 Connecting to Redis: %s (DB: %d)", options.Addr, redisConfig.DB)

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		rs.state = StateError
		logger.Error("❌ Failed to connect to Redis: %v (address: %s)", err, options.Addr)
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rs.client = client
	rs.state = StateRunning
	logger.Info("✅ Redis подключен (pool: %d, min idle: %d)", redisConfig.PoolSize, redisConfig.MinIdleConns)
	return nil
}

// Stop закрывает клиент
func (rs *RedisService) Stop() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.state != StateRunning {
		return fmt.Errorf("Redis service is not running")
	}

	logger.Info("🛑 Stopping Redis service...")
	rs.state = StateStopping

	if rs.client != nil {
		if err := rs.client.Close(); err != nil {
			rs.state = StateError
			logger.Error("❌ Failed to close Redis client: %v", err)
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}

	rs.client = nil
	rs.state = StateStopped
	logger.Info("✅ Redis service stopped")
	return nil
}

// GetClient возвращает клиент Redis (nil до Start)
func (rs *RedisService) GetClient() *redis.Client {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.client
}

// State возвращает состояние сервиса
func (rs *RedisService) State() ServiceState {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.state
}

// IsRunning возвращает true если сервис запущен
func (rs *RedisService) IsRunning() bool {
	return rs.State() == StateRunning
}

// HealthCheck пингует Redis
func (rs *RedisService) HealthCheck(ctx context.Context) error {
	client := rs.GetClient()
	if client == nil || !rs.IsRunning() {
		return fmt.Errorf("Redis service is not running")
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn("⚠️ Redis health check failed: %v", err)
		return fmt.Errorf("Redis ping failed: %w", err)
	}
	return nil
}

// GetStats статистика пула соединений
func (rs *RedisService) GetStats() map[string]interface{} {
	client := rs.GetClient()
	stats := map[string]interface{}{
		"state":     rs.State(),
		"connected": client != nil,
	}

	if client != nil {
		poolStats := client.PoolStats()
		stats["pool_hits"] = poolStats.Hits
		stats["pool_misses"] = poolStats.Misses
		stats["pool_timeouts"] = poolStats.Timeouts
		stats["pool_total_conns"] = poolStats.TotalConns
		stats["pool_idle_conns"] = poolStats.IdleConns
		stats["address"] = rs.config.GetRedisAddress()
		stats["db"] = rs.config.Redis.DB
	}

	return stats
}

// SessionStore создает хранилище сессий поверх подключения
func (rs *RedisService) SessionStore(ttl time.Duration) (*SessionStore, error) {
	client := rs.GetClient()
	if client == nil {
		return nil, fmt.Errorf("Redis client is not initialized")
	}
	return NewSessionStore(client, rs.config.Redis.KeyPrefix, ttl), nil
}

// Name возвращает имя сервиса
func (rs *RedisService) Name() string {
	return "RedisService"
}
