package webhandlers

import (
	"log/slog"
	"time"

	"github.com/fastgi/fastgi/web"
)

// LoggingConfig configures the request logging middleware behaviour.
type LoggingConfig struct {
	// Logger is the structured logger to write to. Defaults to
	// slog.Default.
	Logger *slog.Logger

	// Level is the level completed requests are logged at.
	// Defaults to slog.LevelInfo. Failed requests always log at error
	// level.
	Level slog.Level

	// Skip is an optional predicate; requests it returns true for are
	// not logged (health checks, metrics scrapes).
	Skip func(req *web.Request) bool

	// SlowThreshold, when positive, logs requests slower than the
	// threshold at warn level with a slow marker.
	SlowThreshold time.Duration
}

// LoggingMiddleware returns a middleware that logs one line per request
// with method, path, status and duration. The log call runs on the exit
// side of the chain, after the inner layers and the terminal handler
// have produced their outcome, including error outcomes.
func LoggingMiddleware(cfg LoggingConfig) web.Middleware {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(req *web.Request, next web.Next) (*web.Response, error) {
		if cfg.Skip != nil && cfg.Skip(req) {
			return next(req)
		}

		start := time.Now()
		resp, err := next(req)
		elapsed := time.Since(start)

		attrs := []any{
			slog.String("method", req.Method()),
			slog.String("path", req.Path()),
			slog.Duration("duration", elapsed),
		}
		if id := RequestIDFromRequest(req); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}

		switch {
		case err != nil:
			attrs = append(attrs, slog.Any("error", err))
			logger.Error("request failed", attrs...)
		case resp != nil:
			attrs = append(attrs, slog.Int("status", resp.Status))
			if cfg.SlowThreshold > 0 && elapsed > cfg.SlowThreshold {
				attrs = append(attrs, slog.Bool("slow", true))
				logger.Warn("request completed", attrs...)
			} else {
				logger.Log(req.Context(), cfg.Level, "request completed", attrs...)
			}
		default:
			logger.Log(req.Context(), cfg.Level, "request completed", attrs...)
		}

		return resp, err
	}
}
