package webhandlers

import (
	"net/http"

	"github.com/fastgi/fastgi/web"
)

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// LogFunc is an optional callback invoked with the request and the
	// recovered value when a panic occurs. When nil, no logging is
	// performed.
	LogFunc func(req *web.Request, err any)
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// downstream middleware and handlers. When a panic occurs it returns
// 500 Internal Server Error to the client and optionally invokes
// LogFunc.
func RecoveryMiddleware(cfg RecoveryConfig) web.Middleware {
	return func(req *web.Request, next web.Next) (resp *web.Response, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				if cfg.LogFunc != nil {
					cfg.LogFunc(req, rec)
				}

				resp = web.Text(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				err = nil
			}
		}()

		return next(req)
	}
}
