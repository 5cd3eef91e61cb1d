// cmd/bot/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"solboost-bot/application/bootstrap"
	"solboost-bot/internal/infrastructure/config"
	"solboost-bot/pkg/logger"

	"github.com/urfave/cli/v2"
)

var (
	version   = "1.0.0"
	buildTime = "неизвестно"
)

func main() {
	app := &cli.App{
		Name:    "solboost-bot",
		Usage:   "Telegram бот заказов SolBoost с проверкой оплаты в Solana",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Value: ".env", Usage: "путь к .env файлу", EnvVars: []string{"ENV_FILE"}},
			&cli.StringFlag{Name: "catalog", Usage: "JSON файл каталога тарифов (переопределяет CATALOG_FILE)"},
			&cli.StringFlag{Name: "log-level", Usage: "уровень логирования: debug, info, warn, error (переопределяет LOG_LEVEL)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("env"))
	if err != nil {
		return fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := initLogger(cfg); err != nil {
		return err
	}
	defer logger.GetLogger().Close()

	logger.Info("🚀 Запуск SolBoost bot v%s (сборка: %s)", version, buildTime)
	cfg.PrintSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := bootstrap.NewAppBuilder().
		WithConfig(cfg).
		WithCatalogFile(c.String("catalog")).
		WithVersion(version).
		Build(ctx)
	if err != nil {
		return fmt.Errorf("не удалось собрать приложение: %w", err)
	}
	defer application.Cleanup()

	return application.Run(ctx)
}

// initLogger пишет в файл, а при ошибке только в консоль
func initLogger(cfg *config.Config) error {
	logPath := cfg.Logging.File
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			fmt.Printf("❌ Не удалось создать директорию логов: %v\n", err)
			logPath = ""
		}
	}

	if err := logger.InitGlobal(logPath, cfg.Logging.Level, cfg.Logging.Debug); err != nil {
		fmt.Printf("❌ Не удалось инициализировать файловый логгер: %v. Переход на консольный...\n", err)
		if err := logger.InitGlobal("", cfg.Logging.Level, cfg.Logging.Debug); err != nil {
			return fmt.Errorf("не удалось инициализировать логгер: %w", err)
		}
	}
	return nil
}
