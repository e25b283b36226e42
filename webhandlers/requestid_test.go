package webhandlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastgi/fastgi/web"
)

func okEndpoint() *web.Endpoint {
	return web.NewEndpoint(func(_ *web.Request, _ web.Params) (*web.Response, error) {
		return web.Text(http.StatusOK, "ok"), nil
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates a UUID by default", func(t *testing.T) {
		app := web.New()
		require.NoError(t, app.Use(RequestIDMiddleware(RequestIDConfig{})))
		require.NoError(t, app.Get("/test", okEndpoint()))

		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		id := w.Header().Get("X-Request-ID")
		require.NotEmpty(t, id)

		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("custom header name", func(t *testing.T) {
		app := web.New()
		require.NoError(t, app.Use(RequestIDMiddleware(RequestIDConfig{
			HeaderName: "X-Trace-ID",
		})))
		require.NoError(t, app.Get("/test", okEndpoint()))

		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
		assert.Empty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("custom generator", func(t *testing.T) {
		app := web.New()
		require.NoError(t, app.Use(RequestIDMiddleware(RequestIDConfig{
			GenerateFunc: func(_ *web.Request) string { return "fixed-id" },
		})))
		require.NoError(t, app.Get("/test", okEndpoint()))

		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
	})

	t.Run("trusts incoming header when enabled", func(t *testing.T) {
		app := web.New()
		require.NoError(t, app.Use(RequestIDMiddleware(RequestIDConfig{
			TrustIncoming: true,
		})))
		require.NoError(t, app.Get("/test", okEndpoint()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "caller-supplied")
		app.ServeHTTP(w, req)

		assert.Equal(t, "caller-supplied", w.Header().Get("X-Request-ID"))
	})

	t.Run("ignores incoming header by default", func(t *testing.T) {
		app := web.New()
		require.NoError(t, app.Use(RequestIDMiddleware(RequestIDConfig{})))
		require.NoError(t, app.Get("/test", okEndpoint()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "caller-supplied")
		app.ServeHTTP(w, req)

		assert.NotEqual(t, "caller-supplied", w.Header().Get("X-Request-ID"))
	})

	t.Run("handler sees the ID via RequestIDFromRequest", func(t *testing.T) {
		var seen string

		app := web.New()
		require.NoError(t, app.Use(RequestIDMiddleware(RequestIDConfig{
			GenerateFunc: func(_ *web.Request) string { return "visible-downstream" },
		})))
		require.NoError(t, app.Get("/test", web.NewEndpoint(func(req *web.Request, _ web.Params) (*web.Response, error) {
			seen = RequestIDFromRequest(req)
			return web.Text(http.StatusOK, "ok"), nil
		})))

		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, "visible-downstream", seen)
	})

	t.Run("no ID without the middleware", func(t *testing.T) {
		req, err := web.NewRequest(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)

		assert.Empty(t, RequestIDFromRequest(req))
	})
}
