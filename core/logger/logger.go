package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init replaces the package logger. format is "json" or "text".
func Init(level, format string) {
	log = New(os.Stdout, level, format)
	slog.SetDefault(log)
}

// New builds a slog logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05")),
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Debug(msg string, args ...any) { log.Debug(msg, normalize(args)...) }
func Info(msg string, args ...any)  { log.Info(msg, normalize(args)...) }
func Warn(msg string, args ...any)  { log.Warn(msg, normalize(args)...) }
func Error(msg string, args ...any) { log.Error(msg, normalize(args)...) }

// normalize lets callers pass a bare error or value: an odd argument
// count moves the last value under "error" instead of slog's !BADKEY.
func normalize(args []any) []any {
	if len(args)%2 == 0 {
		return args
	}
	if len(args) == 1 {
		return []any{"error", args[0]}
	}
	out := make([]any, 0, len(args)+1)
	out = append(out, args[:len(args)-1]...)
	return append(out, "error", args[len(args)-1])
}
