package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"solboost-bot/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{Version: "test"}
	cfg.Telegram.APIURL = "http://127.0.0.1:1"
	cfg.Telegram.BotToken = "T"
	cfg.Telegram.PollingTimeout = 1
	cfg.Telegram.RetryInterval = time.Second
	cfg.Telegram.RateLimit = "30-M"
	cfg.HTTP.Port = 3000
	cfg.HTTP.MetricsEnabled = true
	cfg.Solana.RPCURL = "http://127.0.0.1:1"
	cfg.Solana.Commitment = "confirmed"
	cfg.Solana.Timeout = time.Second
	cfg.Sessions.Store = config.SessionStoreMemory
	cfg.Sessions.TTL = time.Hour
	cfg.Sessions.SweepInterval = time.Minute
	cfg.Operators.Store = config.OperatorsStoreFile
	cfg.Operators.File = filepath.Join(t.TempDir(), "admins.json")
	cfg.Operators.InitialAdmins = []int64{42}
	cfg.Notifications.PoolSize = 2
	cfg.Notifications.Timeout = time.Second
	return cfg
}

func TestBuildInMemoryApplication(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewAppBuilder().WithConfig(cfg).WithVersion("1.2.3").Build(context.Background())
	require.NoError(t, err)
	defer app.Cleanup()

	assert.Nil(t, app.database)
	assert.Nil(t, app.redis)
	assert.NotNil(t, app.bot)

	// начальный админ записан в файл
	data, err := os.ReadFile(cfg.Operators.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "42")

	rec := httptest.NewRecorder()
	app.http.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestBuildFailsOnMissingCatalogFile(t *testing.T) {
	cfg := testConfig(t)

	_, err := NewAppBuilder().
		WithConfig(cfg).
		WithCatalogFile(filepath.Join(t.TempDir(), "missing.json")).
		Build(context.Background())
	assert.Error(t, err)
}

func TestBuildRequiresConfig(t *testing.T) {
	_, err := NewAppBuilder().Build(context.Background())
	assert.Error(t, err)
}

func TestCleanupIsIdempotent(t *testing.T) {
	app, err := NewAppBuilder().WithConfig(testConfig(t)).Build(context.Background())
	require.NoError(t, err)

	app.Cleanup()
	app.Cleanup()
}
