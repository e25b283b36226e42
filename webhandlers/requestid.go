package webhandlers

import (
	"github.com/google/uuid"

	"github.com/fastgi/fastgi/web"
)

type requestIDKey struct{}

// RequestIDFromRequest returns the request ID stored by
// RequestIDMiddleware. Returns an empty string if no ID is present.
func RequestIDFromRequest(req *web.Request) string {
	if id, ok := req.Value(requestIDKey{}).(string); ok {
		return id
	}

	return ""
}

// GenerateUUIDv4 returns a random UUID string, the default request ID
// generator.
func GenerateUUIDv4(_ *web.Request) string {
	return uuid.NewString()
}

// RequestIDConfig configures the Request ID middleware behaviour.
type RequestIDConfig struct {
	// HeaderName overrides the header used to propagate the request ID.
	// Defaults to "X-Request-ID" when empty.
	HeaderName string

	// GenerateFunc is an optional callback that returns a new unique ID.
	// It receives the current request, allowing ID generation based on
	// request context. Defaults to GenerateUUIDv4.
	GenerateFunc func(req *web.Request) string

	// TrustIncoming, when true, reuses an existing request ID from the
	// incoming request header instead of generating a new one.
	TrustIncoming bool
}

// RequestIDMiddleware returns a middleware that generates or propagates
// a request ID. The ID is stored on the request (for downstream
// middleware and handlers) and set on the response header (for the
// caller).
func RequestIDMiddleware(cfg RequestIDConfig) web.Middleware {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	trustIncoming := cfg.TrustIncoming

	return func(req *web.Request, next web.Next) (*web.Response, error) {
		id := ""
		if trustIncoming {
			id = req.Header(headerName)
		}
		if id == "" {
			id = generate(req)
		}

		req.SetValue(requestIDKey{}, id)

		resp, err := next(req)
		if resp != nil {
			resp.SetHeader(headerName, id)
		}
		return resp, err
	}
}
