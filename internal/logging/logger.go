package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/Capstone-E1/soilsense_backend/config"
)

const appName = "soilsense"

// New builds the process logger: colored tint output in dev, JSON in prod
func New(cfg config.AppConfig, version string) *slog.Logger {
	return newLogger(os.Stdout, cfg, version)
}

func newLogger(w io.Writer, cfg config.AppConfig, version string) *slog.Logger {
	if cfg.Env == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.Env,
	)
}
