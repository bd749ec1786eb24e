package logger

import (
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
)

type Level string
type Provider string

const (
	DEBUG Level = "debug"
	INFO  Level = "info"
	WARN  Level = "warn"
	ERROR Level = "error"

	ProviderDevSlog Provider = "dev"  // colored output for local use
	ProviderStdJson Provider = "json" // structured output
	ProviderNoop    Provider = "noop" // for unit tests
)

type Config struct {
	Provider Provider `envconfig:"LOG_PROVIDER" default:"dev"`
	Level    Level    `envconfig:"LOG_LEVEL" default:"info"`
}

// NewDefault creates a slog.Logger according to Config.
func NewDefault(c Config) *slog.Logger {
	level := convertLevel(c.Level)
	switch c.Provider {
	case ProviderNoop:
		return slog.New(slog.DiscardHandler)
	case ProviderStdJson:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	case ProviderDevSlog:
		fallthrough
	default:
		return slog.New(devslog.NewHandler(os.Stdout, &devslog.Options{
			HandlerOptions:    &slog.HandlerOptions{Level: level},
			NewLineAfterLog:   true,
			SortKeys:          true,
			TimeFormat:        "[15:04:05]",
			StringerFormatter: true,
		}))
	}
}

// InitDefault creates a logger and installs it as the process default.
func InitDefault(c Config) {
	slog.SetDefault(NewDefault(c))
}

func convertLevel(l Level) slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
