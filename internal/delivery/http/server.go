// internal/delivery/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"solboost-bot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RootMessage ответ на GET /
const RootMessage = "👋 Hello! SolBooster Volume Bot is running."

// HealthChecker компонент, чье состояние входит в /health
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	Port         int
	Version      string
	Debug        bool
	CheckTimeout time.Duration
}

// Server HTTP сервер health-check и метрик
type Server struct {
	config    ServerConfig
	engine    *gin.Engine
	server    *http.Server
	checks    []HealthChecker
	startedAt time.Time

	mu      sync.Mutex
	running bool
}

// NewServer создает сервер. metrics может быть nil, тогда /metrics не регистрируется.
func NewServer(cfg ServerConfig, metrics http.Handler, checks ...HealthChecker) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 3 * time.Second
	}

	s := &Server{
		config:    cfg,
		engine:    gin.New(),
		checks:    checks,
		startedAt: time.Now(),
	}

	s.engine.Use(gin.Recovery(), requestLogger())
	s.engine.GET("/", s.root)
	s.engine.GET("/health", s.health)
	if metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(metrics))
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler обработчик запросов (для тестов и встраивания)
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start запускает сервер в отдельной горутине
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("HTTP сервер уже запущен")
	}
	s.running = true

	go func() {
		logger.Info("🌐 HTTP сервер слушает %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("❌ HTTP сервер остановлен с ошибкой: %v", err)
		}
	}()
	return nil
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	return s.server.Shutdown(ctx)
}

func (s *Server) root(c *gin.Context) {
	c.String(http.StatusOK, RootMessage)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.CheckTimeout)
	defer cancel()

	status := "ok"
	components := make(map[string]string, len(s.checks))
	for _, check := range s.checks {
		if err := check.HealthCheck(ctx); err != nil {
			status = "degraded"
			components[check.Name()] = err.Error()
			logger.Warn("⚠️ Health-check %s: %v", check.Name(), err)
			continue
		}
		components[check.Name()] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"version":    s.config.Version,
		"uptime":     time.Since(s.startedAt).Round(time.Second).String(),
		"components": components,
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("🌐 %s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
