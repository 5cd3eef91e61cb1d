// application/bootstrap/builder.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"solboost-bot/internal/core/domain/catalog"
	"solboost-bot/internal/core/domain/checkout"
	"solboost-bot/internal/core/domain/operators"
	"solboost-bot/internal/core/domain/orders"
	"solboost-bot/internal/core/domain/payment"
	"solboost-bot/internal/core/domain/session"
	httpserver "solboost-bot/internal/delivery/http"
	"solboost-bot/internal/delivery/telegram/app/bot"
	"solboost-bot/internal/delivery/telegram/app/bot/message_sender"
	"solboost-bot/internal/delivery/telegram/app/bot/middlewares"
	telegram_http "solboost-bot/internal/delivery/telegram/app/http_client"
	"solboost-bot/internal/infrastructure/api/solana"
	redis_cache "solboost-bot/internal/infrastructure/cache/redis"
	"solboost-bot/internal/infrastructure/config"
	"solboost-bot/internal/infrastructure/metrics"
	storage "solboost-bot/internal/infrastructure/persistence/in_memory_storage"
	storage_factory "solboost-bot/internal/infrastructure/persistence/in_memory_storage/factory"
	"solboost-bot/internal/infrastructure/persistence/postgres/database"
	postgres_factory "solboost-bot/internal/infrastructure/persistence/postgres/factory"
	"solboost-bot/pkg/logger"
)

// AppBuilder собирает приложение из конфигурации
type AppBuilder struct {
	config      *config.Config
	catalogFile string
	version     string
}

// NewAppBuilder создает билдер
func NewAppBuilder() *AppBuilder {
	return &AppBuilder{version: "dev"}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	b.config = cfg
	return b
}

// WithCatalogFile переопределяет CATALOG_FILE
func (b *AppBuilder) WithCatalogFile(path string) *AppBuilder {
	b.catalogFile = path
	return b
}

func (b *AppBuilder) WithVersion(version string) *AppBuilder {
	b.version = version
	return b
}

// Build создает и соединяет компоненты. Внешние подключения
// (Postgres, Redis) открываются здесь, чтобы ошибки были видны до запуска.
func (b *AppBuilder) Build(ctx context.Context) (_ *Application, err error) {
	if b.config == nil {
		return nil, fmt.Errorf("конфигурация не указана")
	}
	cfg := b.config

	app := &Application{config: cfg}
	defer func() {
		if err != nil {
			app.Cleanup()
		}
	}()

	logger.Info("🏗️  Сборка приложения...")

	// 1. Каталог тарифов
	tiers, err := b.loadCatalog()
	if err != nil {
		return nil, err
	}
	logger.Info("📦 Тарифов в каталоге: %d", tiers.Len())

	app.metrics = metrics.NewRecorder()

	// 2. Хранилища
	var checks []httpserver.HealthChecker
	var ledger orders.Ledger
	var operatorStore operators.Store

	memory, err := storage_factory.NewStorageFactory(storage_factory.StorageDependencies{
		Config: &storage_factory.StorageFactoryConfig{
			DefaultStorageConfig: &storage.StorageConfig{
				SessionTTL:      cfg.Sessions.TTL,
				CleanupInterval: cfg.Sessions.SweepInterval,
				MaxSessions:     cfg.Sessions.MaxSessions,
			},
			EnableCleanupRoutine: !cfg.UsesRedisSessions(),
		},
	})
	if err != nil {
		return nil, err
	}
	app.memory = memory
	ledger = memory.OrderLedger()

	if cfg.Database.Enabled {
		app.database = database.NewDatabaseService(cfg)
		if err := app.database.Start(ctx); err != nil {
			return nil, err
		}
		checks = append(checks, app.database)

		repos, err := postgres_factory.NewRepositoryFactory(postgres_factory.RepositoryDependencies{
			DatabaseService: app.database,
		})
		if err != nil {
			return nil, err
		}
		orderRepo, err := repos.CreateOrderRepository()
		if err != nil {
			return nil, err
		}
		ledger = orderRepo

		if cfg.Operators.Store == config.OperatorsStorePostgres {
			operatorRepo, err := repos.CreateOperatorRepository()
			if err != nil {
				return nil, err
			}
			operatorStore = operatorRepo
		}
	}
	if operatorStore == nil {
		operatorStore = operators.NewFileStore(cfg.Operators.File)
	}

	var sessions session.Store = memory.SessionStore()
	if cfg.UsesRedisSessions() {
		app.redis = redis_cache.NewRedisService(cfg)
		if err := app.redis.Start(); err != nil {
			return nil, err
		}
		checks = append(checks, app.redis)

		redisSessions, err := app.redis.SessionStore(cfg.Sessions.TTL)
		if err != nil {
			return nil, err
		}
		sessions = redisSessions
	}

	// 3. Solana и платежи
	solanaClient := solana.NewClient(solana.Config{
		RPCURL:     cfg.Solana.RPCURL,
		Commitment: cfg.Solana.Commitment,
		Timeout:    cfg.Solana.Timeout,
	})
	checks = append(checks, namedCheck{name: "solana", check: solanaClient.Health})

	payments, err := payment.NewPaymentService(payment.Dependencies{
		Ledger:  solanaClient,
		Orders:  ledger,
		Metrics: app.metrics,
	})
	if err != nil {
		return nil, err
	}

	// 4. Telegram
	baseURL := telegram_http.BaseURL(cfg.Telegram.APIURL, cfg.Telegram.BotToken)
	sender := message_sender.NewMessageSender(telegram_http.NewTelegramClient(baseURL))

	roster, err := operators.NewRoster(ctx, operatorStore, cfg.Operators.InitialAdmins)
	if err != nil {
		return nil, err
	}

	app.notifier, err = operators.NewNotifier(roster, sender, cfg.Notifications.PoolSize, cfg.Notifications.Timeout)
	if err != nil {
		return nil, err
	}

	machine, err := checkout.NewMachine(checkout.Dependencies{
		Catalog:   tiers,
		Sessions:  sessions,
		Messenger: sender,
		Payments:  payments,
		Notifier:  app.notifier,
		Roster:    roster,
		Metrics:   app.metrics,
	})
	if err != nil {
		return nil, err
	}

	limiter, err := middlewares.NewChatRateLimiter(cfg.Telegram.RateLimit)
	if err != nil {
		return nil, err
	}

	app.bot, err = bot.NewTelegramBot(bot.Dependencies{
		Checkout:       machine,
		Sender:         sender,
		Limiter:        limiter,
		Metrics:        app.metrics,
		HandlerTimeout: cfg.Solana.Timeout + 30*time.Second,
	})
	if err != nil {
		return nil, err
	}
	app.polling = bot.NewPollingClient(app.bot, telegram_http.NewPollingClient(baseURL, cfg.Telegram.PollingTimeout),
		cfg.Telegram.PollingTimeout, cfg.Telegram.RetryInterval)

	// 5. HTTP
	metricsHandler := app.metrics.Handler()
	if !cfg.HTTP.MetricsEnabled {
		metricsHandler = nil
	}
	app.http = httpserver.NewServer(httpserver.ServerConfig{
		Port:    cfg.HTTP.Port,
		Version: b.version,
		Debug:   cfg.Logging.Debug,
	}, metricsHandler, checks...)

	logger.Info("✅ Приложение собрано")
	return app, nil
}

func (b *AppBuilder) loadCatalog() (*catalog.Catalog, error) {
	path := b.catalogFile
	if path == "" {
		path = b.config.Catalog.File
	}
	if path == "" {
		return catalog.Default(), nil
	}

	logger.Info("📂 Загрузка каталога из %s", path)
	return catalog.LoadFile(path)
}

// namedCheck health-check из функции
type namedCheck struct {
	name  string
	check func(ctx context.Context) error
}

func (c namedCheck) Name() string { return c.name }

func (c namedCheck) HealthCheck(ctx context.Context) error { return c.check(ctx) }
