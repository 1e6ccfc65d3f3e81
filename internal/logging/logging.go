// Package logging builds the zap loggers used by the command-line tools.
package logging

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"

	EncodingConsole = "console"
	EncodingJSON    = "json"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

const timeFormat = "2006-01-02 15:04:05.000"

// LoggerConfig selects level, encoder and output of a logger.
type LoggerConfig struct {
	Level        string `env:"LOG_LEVEL" envDefault:"warn"`
	Mode         string `env:"LOG_MODE" envDefault:"development"`
	Encoding     string `env:"LOG_ENCODING" envDefault:"console"`
	ColorEnabled bool   `env:"LOG_COLOR" envDefault:"true"`

	// Output defaults to stderr.
	Output io.Writer
}

var levels = map[string]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

// ParseLevel maps a level name to a zap level. Unknown names are warn.
func ParseLevel(name string) zapcore.Level {
	if lvl, ok := levels[name]; ok {
		return lvl
	}
	return zapcore.WarnLevel
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(timeFormat))
}

// New builds a logger for cfg.
func New(cfg LoggerConfig) *zap.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	if cfg.Mode == ModeProduction {
		encoderCfg = zap.NewProductionEncoderConfig()
	}
	encoderCfg.LevelKey = "LEVEL"
	encoderCfg.CallerKey = "CALLER"
	encoderCfg.TimeKey = "TIME"
	encoderCfg.NameKey = "NAME"
	encoderCfg.MessageKey = "MESSAGE"
	encoderCfg.EncodeTime = timeEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == EncodingJSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		if cfg.ColorEnabled {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), zap.NewAtomicLevelAt(ParseLevel(cfg.Level)))
	return zap.New(core, zap.AddCaller())
}
