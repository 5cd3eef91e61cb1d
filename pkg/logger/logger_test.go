package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")

	l, err := NewLogger(path, "debug", false)
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, l.Level())

	l.Info("проверка %d", 42)
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "проверка 42")
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	l, err := NewLogger(path, "warn", false)
	require.NoError(t, err)

	l.Info("информационное сообщение")
	l.Warn("предупреждение")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "информационное сообщение")
	assert.Contains(t, string(data), "предупреждение")
}

func TestGlobalBeforeInitDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("до инициализации")
		Payment(1, "sig", "paid")
	})
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "abc", shorten("abc"))
	assert.Equal(t, "12345678...hijklmno", shorten("12345678abcdefghijklmno"))
}
