package logging

import (
	"bytes"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestNewLogger_ConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithConfig(Config{
		FileLevel:     logrus.DebugLevel,
		ConsoleLevel:  logrus.InfoLevel,
		ConsoleWriter: &buf,
	})

	logger.Debug("hidden-line")
	logger.Info("visible-line")

	assert.NotContains(t, buf.String(), "hidden-line")
	assert.Contains(t, buf.String(), "visible-line")
}

func TestNewLogger_FileOutput(t *testing.T) {
	dir := t.TempDir()
	logger := newLoggerWithConfig(Config{
		FileLevel:      logrus.DebugLevel,
		ConsoleLevel:   logrus.InfoLevel,
		FileDir:        dir,
		DisableConsole: true,
	})

	logger.WithField("stage", "normalize").Debug("file-line")

	entries, err := os.ReadDir(dir)
	require.Nil(t, err)
	require.Equal(t, 1, len(entries))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.Nil(t, err)
	assert.Contains(t, string(data), `"stage":"normalize"`)
	assert.Contains(t, string(data), "file-line")
}

func TestGenerateTestConfig(t *testing.T) {
	SetDefaultConfig(GenerateTestConfig(t))
	logger := NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.Level)
	logger.Debug("routed through t.Log")
}
