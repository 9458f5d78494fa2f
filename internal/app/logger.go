package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Every record carries the service,
// environment and component so web and worker output can share one sink.
func NewLogger(cfg *Config, component string) *slog.Logger {
	return newLogger(cfg, component, os.Stdout)
}

func newLogger(cfg *Config, component string, w io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	opts := &slog.HandlerOptions{AddSource: true, Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	service := cfg.ServiceName
	if service == "" {
		service = "storefront"
	}
	attrs := []any{slog.String("service", service)}
	if cfg.AppEnv != "" {
		attrs = append(attrs, slog.String("env", cfg.AppEnv))
	}
	if component != "" {
		attrs = append(attrs, slog.String("component", component))
	}
	return slog.New(handler).With(attrs...)
}
