package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyorg/invtrack/internal/config"
)

func TestNew_ConsoleInfoFileDebug(t *testing.T) {
	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "logs", "inventory_manager.log")

	logger := New(Options{Console: &console, NoColor: true, FilePath: logPath})
	logger.Debug().Msg("debug only in file")
	logger.Info().Msg("info everywhere")

	assert.NotContains(t, console.String(), "debug only in file")
	assert.Contains(t, console.String(), "info everywhere")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug only in file")
	assert.Contains(t, string(data), "info everywhere")
}

func TestNew_VerboseConsole(t *testing.T) {
	var console bytes.Buffer

	logger := New(Options{Verbosity: 1, Console: &console, NoColor: true})
	logger.Debug().Str("item_id", "3").Msg("debug on console")

	assert.Contains(t, console.String(), "debug on console")
	assert.Contains(t, console.String(), "item_id=3")
}

func TestNew_InstallsStackMarshaler(t *testing.T) {
	prev := zerolog.ErrorStackMarshaler
	t.Cleanup(func() { zerolog.ErrorStackMarshaler = prev })
	zerolog.ErrorStackMarshaler = nil

	New(Options{Console: &bytes.Buffer{}, NoColor: true})
	require.NotNil(t, zerolog.ErrorStackMarshaler)

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	l.Error().Stack().Err(pkgerrors.New("boom")).Msg("failed")
	assert.Contains(t, buf.String(), `"stack":[`)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, "info", levelFor(0).String())
	assert.Equal(t, "debug", levelFor(1).String())
	assert.Equal(t, "trace", levelFor(2).String())
	assert.Equal(t, "trace", levelFor(5).String())
}

type mapSettings map[string]string

func (m mapSettings) GetSetting(key string) (string, error) {
	return m[key], nil
}

func TestNewRotatingFile_UsesLoader(t *testing.T) {
	loader := config.NewLoader(mapSettings{
		"log.max_size_mb":  "5",
		"log.max_backups":  "2",
		"log.max_age_days": "0",
		"log.compress":     "false",
	})

	w := newRotatingFile("inventory_manager.log", loader)
	assert.Equal(t, 5, w.MaxSize)
	assert.Equal(t, 2, w.MaxBackups)
	assert.Equal(t, 0, w.MaxAge)
	assert.False(t, w.Compress)

	w = newRotatingFile("inventory_manager.log", nil)
	assert.Equal(t, DefaultMaxSizeMB, w.MaxSize)
	assert.True(t, w.Compress)
}

func TestFilePathFor(t *testing.T) {
	assert.Equal(t, DefaultLogFilePath, FilePathFor(""))

	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, DefaultLogFilePath), FilePathFor(filepath.Join(dir, "inventory.db")))
}
