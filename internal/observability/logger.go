package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the JSON logger for the API process.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
	}

	return slog.New(contextHandler{slog.NewJSONHandler(w, opts)}).
		With("service", "todohub-api", "env", env)
}
