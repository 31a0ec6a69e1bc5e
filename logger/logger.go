package logger

import (
	"strings"

	"github.com/Nemutagk/goenvars"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// "dev" (consola) o "prod" (JSON). Default: "dev"
	Env string
	// "debug", "info", "warn", "error". Default: "info"
	Level       string
	ServiceName string
}

// FromEnv lee THINODIUM_LOG_ENV y THINODIUM_LOG_LEVEL.
func FromEnv(serviceName string) Config {
	return Config{
		Env:         goenvars.GetEnv("THINODIUM_LOG_ENV", "dev"),
		Level:       goenvars.GetEnv("THINODIUM_LOG_LEVEL", "info"),
		ServiceName: serviceName,
	}
}

// New construye el logger; si la configuración de zap falla regresa uno de producción.
func New(cfg Config) *zap.Logger {
	level := parseLevel(cfg.Level)

	var zcfg zap.Config
	if strings.ToLower(cfg.Env) == "prod" {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := zcfg.Build(zap.AddCaller())
	if err != nil {
		l, _ = zap.NewProduction()
	}

	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	return l
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
