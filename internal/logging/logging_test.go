package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plantarium-platform/compose-datasources/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestNew_WritesRotatingFile(t *testing.T) {
	var config models.GlobalConfig
	config.Logging.Level = "warn"
	config.Logging.File = filepath.Join(t.TempDir(), "logs", "compose-datasources.log")
	config.Logging.MaxSize = 1

	logger, err := New(config)
	require.NoError(t, err)

	logger.Info("Not written below warn")
	logger.Warn("Compose file skipped", zap.String("file", "docker-compose.yml"))
	_ = logger.Sync()

	content, err := os.ReadFile(config.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Compose file skipped")
	assert.Contains(t, string(content), `"file":"docker-compose.yml"`)
	assert.NotContains(t, string(content), "Not written below warn")
}

func TestNew_StderrOnly(t *testing.T) {
	logger, err := New(models.GlobalConfig{})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
