package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/climate-grid-etl/internal/config"
)

// NewLogger builds the run logger from LOG_LEVEL and LOG_FORMAT and sets it as
// the slog default. When LOG_FILE is set, records are written to both stdout
// and the file; the returned closer releases the file.
func NewLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogFile == "" {
		return logger, nopCloser{}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open LOG_FILE: %w", err)
	}
	teed := newTeeLogger(io.MultiWriter(os.Stdout, f), minLevel(logger), cfg.LogFormat)
	slog.SetDefault(teed)
	return teed, f, nil
}

// newTeeLogger mirrors the shared logger's handler choice on an arbitrary writer.
func newTeeLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// minLevel reports the lowest level logger emits.
func minLevel(logger *slog.Logger) slog.Level {
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if logger.Enabled(context.Background(), l) {
			return l
		}
	}
	return slog.LevelError
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
