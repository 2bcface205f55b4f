package logger

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger from cfg. Debug level switches to the development
// preset; any other level uses the production preset at that level.
func New(cfg *Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		parsed, err := zap.ParseAtomicLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var config zap.Config
	if level.Level() == zapcore.DebugLevel {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = level

	switch strings.ToLower(cfg.Format) {
	case "console":
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	case "", "json":
		config.Encoding = "json"
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "message"

	return config.Build()
}

// WithRayID returns a logger with the ray_id field set from the Fiber context.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	rid := c.Locals("ray_id")
	if str, ok := rid.(string); ok && str != "" {
		return l.With(zap.String("ray_id", str))
	}
	return l
}

// WithWorksheet scopes l to one worksheet. The default worksheet logs as "_default".
func WithWorksheet(l *zap.Logger, worksheet string) *zap.Logger {
	if worksheet == "" {
		worksheet = "_default"
	}
	return l.With(zap.String("worksheet", worksheet))
}
