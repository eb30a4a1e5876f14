package logging_test

import (
	"log/slog"
	"testing"

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("nonsense"))
}

func TestNewWithFormat(t *testing.T) {
	assert.IsType(t, &slog.JSONHandler{}, logging.NewWithFormat("json", slog.LevelInfo).Handler())
	assert.IsType(t, &slog.TextHandler{}, logging.NewWithFormat("text", slog.LevelInfo).Handler())
}
