// application/bootstrap/app.go
package bootstrap

import (
	"context"
	"sync"
	"time"

	"solboost-bot/internal/core/domain/operators"
	httpserver "solboost-bot/internal/delivery/http"
	"solboost-bot/internal/delivery/telegram/app/bot"
	redis_cache "solboost-bot/internal/infrastructure/cache/redis"
	"solboost-bot/internal/infrastructure/config"
	"solboost-bot/internal/infrastructure/metrics"
	storage_factory "solboost-bot/internal/infrastructure/persistence/in_memory_storage/factory"
	"solboost-bot/internal/infrastructure/persistence/postgres/database"
	"solboost-bot/pkg/logger"
)

// shutdownTimeout время на завершение обработки при остановке
const shutdownTimeout = 30 * time.Second

// Application собранное приложение бота
type Application struct {
	config *config.Config

	metrics  *metrics.Recorder
	memory   *storage_factory.StorageFactory
	database *database.DatabaseService
	redis    *redis_cache.RedisService
	notifier *operators.Notifier
	bot      *bot.TelegramBot
	polling  *bot.PollingClient
	http     *httpserver.Server

	mu      sync.Mutex
	running bool
	cleaned bool
}

// Run запускает фоновые задачи, HTTP сервер и polling, затем ждет отмены ctx
func (app *Application) Run(ctx context.Context) error {
	app.mu.Lock()
	if err := app.memory.Start(); err != nil {
		app.mu.Unlock()
		return err
	}
	if err := app.http.Start(); err != nil {
		app.mu.Unlock()
		return err
	}

	registerCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := app.bot.RegisterCommands(registerCtx); err != nil {
		logger.Warn("Не удалось установить меню команд: %v", err)
	}
	cancel()

	if err := app.polling.Start(ctx); err != nil {
		app.mu.Unlock()
		return err
	}
	app.running = true
	app.mu.Unlock()

	logger.Info("🚀 Бот запущен")
	<-ctx.Done()
	logger.Info("🛑 Получен сигнал завершения...")
	return nil
}

// Cleanup останавливает компоненты в обратном порядке запуска
func (app *Application) Cleanup() {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.cleaned {
		return
	}
	app.cleaned = true
	logger.Info("⏳ Graceful shutdown (таймаут: %v)...", shutdownTimeout)

	if app.polling != nil {
		app.polling.Stop()
	}
	if app.bot != nil {
		app.bot.Close(shutdownTimeout)
	}
	if app.notifier != nil {
		app.notifier.Close(shutdownTimeout)
	}
	if app.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.http.Stop(ctx); err != nil {
			logger.Warn("⚠️ Ошибка остановки HTTP сервера: %v", err)
		}
		cancel()
	}
	if app.memory != nil {
		app.memory.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Stop(); err != nil {
			logger.Warn("⚠️ Ошибка остановки Redis: %v", err)
		}
	}
	if app.database != nil {
		if err := app.database.Stop(); err != nil {
			logger.Warn("⚠️ Ошибка остановки PostgreSQL: %v", err)
		}
	}

	app.running = false
	logger.Info("✅ Graceful shutdown завершен")
}
