package logger_test

import (
	"net/http/httptest"
	"testing"

	"gridsync/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   logger.Config
		debug bool
	}{
		{"ProductionJSON", logger.Config{Level: "info", Format: "json"}, false},
		{"DevelopmentConsole", logger.Config{Level: "debug", Format: "console"}, true},
		{"EmptyFallsBackToProduction", logger.Config{}, false},
		{"UpperCaseLevel", logger.Config{Level: "DEBUG"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := logger.New(&tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestNew_HonoursLevel(t *testing.T) {
	l, err := logger.New(&logger.Config{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_Invalid(t *testing.T) {
	_, err := logger.New(&logger.Config{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = logger.New(&logger.Config{Format: "xml"})
	assert.ErrorContains(t, err, "invalid log format")
}

func TestWithWorksheet(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	logger.WithWorksheet(base, "People").Info("named")
	logger.WithWorksheet(base, "").Info("default")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "People", entries[0].ContextMap()["worksheet"])
	assert.Equal(t, "_default", entries[1].ContextMap()["worksheet"])
}

func TestWithRayID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("ray_id", "ray-123")
		logger.WithRayID(base, c).Info("with ray")
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		logger.WithRayID(base, c).Info("without ray")
		return c.SendStatus(fiber.StatusNoContent)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "ray-123", entries[0].ContextMap()["ray_id"])
	assert.NotContains(t, entries[1].ContextMap(), "ray_id")
}
