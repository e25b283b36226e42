package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// traceMiddleware records enter/exit events around its continuation.
func traceMiddleware(name string, trace *[]string) Middleware {
	return func(req *Request, next Next) (*Response, error) {
		*trace = append(*trace, name+"-enter")
		defer func() {
			*trace = append(*trace, name+"-exit")
		}()
		return next(req)
	}
}

func testRequest(t *testing.T) *Request {
	t.Helper()
	req, err := NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return req
}

func TestChainBuild(t *testing.T) {
	t.Run("empty chain returns the terminal", func(t *testing.T) {
		c := NewChain()
		called := false
		composed, err := c.Build(func(_ *Request) (*Response, error) {
			called = true
			return Text(http.StatusOK, "terminal"), nil
		})
		require.NoError(t, err)

		resp, err := composed(testRequest(t))
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "terminal", string(resp.Body))
	})

	t.Run("first registered middleware is outermost", func(t *testing.T) {
		var trace []string
		c := NewChain()
		require.NoError(t, c.Add(traceMiddleware("A", &trace)))
		require.NoError(t, c.Add(traceMiddleware("B", &trace)))
		require.NoError(t, c.Add(traceMiddleware("C", &trace)))

		composed, err := c.Build(func(_ *Request) (*Response, error) {
			trace = append(trace, "T")
			return Text(http.StatusOK, "ok"), nil
		})
		require.NoError(t, err)

		_, err = composed(testRequest(t))
		require.NoError(t, err)
		assert.Equal(t, []string{
			"A-enter", "B-enter", "C-enter", "T", "C-exit", "B-exit", "A-exit",
		}, trace)
	})

	t.Run("rejects nil terminal", func(t *testing.T) {
		c := NewChain()
		_, err := c.Build(nil)
		require.Error(t, err)
	})
}

func TestChainShortCircuit(t *testing.T) {
	t.Run("skipping the continuation stops inner layers", func(t *testing.T) {
		var trace []string
		c := NewChain()
		require.NoError(t, c.Add(traceMiddleware("A", &trace)))
		require.NoError(t, c.Add(func(_ *Request, _ Next) (*Response, error) {
			trace = append(trace, "B-reject")
			return Text(http.StatusUnauthorized, "denied"), nil
		}))
		require.NoError(t, c.Add(traceMiddleware("C", &trace)))

		terminalRan := false
		composed, err := c.Build(func(_ *Request) (*Response, error) {
			terminalRan = true
			return Text(http.StatusOK, "ok"), nil
		})
		require.NoError(t, err)

		resp, err := composed(testRequest(t))
		require.NoError(t, err)
		assert.False(t, terminalRan)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
		// The outer middleware's exit side still runs.
		assert.Equal(t, []string{"A-enter", "B-reject", "A-exit"}, trace)
	})
}

func TestChainErrorPropagation(t *testing.T) {
	t.Run("exit side of entered middleware runs on terminal error", func(t *testing.T) {
		var trace []string
		c := NewChain()
		require.NoError(t, c.Add(traceMiddleware("A", &trace)))
		require.NoError(t, c.Add(traceMiddleware("B", &trace)))

		boom := errors.New("boom")
		composed, err := c.Build(func(_ *Request) (*Response, error) {
			return nil, boom
		})
		require.NoError(t, err)

		_, err = composed(testRequest(t))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"A-enter", "B-enter", "B-exit", "A-exit"}, trace)
	})
}

func TestChainFreeze(t *testing.T) {
	t.Run("add after build fails and leaves the handler unchanged", func(t *testing.T) {
		var trace []string
		c := NewChain()
		require.NoError(t, c.Add(traceMiddleware("A", &trace)))

		composed, err := c.Build(func(_ *Request) (*Response, error) {
			trace = append(trace, "T")
			return Text(http.StatusOK, "ok"), nil
		})
		require.NoError(t, err)
		assert.True(t, c.Built())

		err = c.Add(traceMiddleware("late", &trace))
		assert.ErrorIs(t, err, ErrChainBuilt)
		assert.Equal(t, 1, c.Count())

		_, err = composed(testRequest(t))
		require.NoError(t, err)
		assert.Equal(t, []string{"A-enter", "T", "A-exit"}, trace)
	})

	t.Run("build runs exactly once", func(t *testing.T) {
		c := NewChain()
		composed, err := c.Build(func(_ *Request) (*Response, error) {
			return Text(http.StatusOK, "ok"), nil
		})
		require.NoError(t, err)

		_, err = c.Build(func(_ *Request) (*Response, error) {
			return Text(http.StatusOK, "other"), nil
		})
		assert.ErrorIs(t, err, ErrChainBuilt)

		// The handler from the first build remains valid.
		resp, err := composed(testRequest(t))
		require.NoError(t, err)
		assert.Equal(t, "ok", string(resp.Body))
		assert.NotNil(t, c.Composed())
	})

	t.Run("count reflects accumulated middleware", func(t *testing.T) {
		c := NewChain()
		assert.Equal(t, 0, c.Count())
		require.NoError(t, c.Add(func(req *Request, next Next) (*Response, error) { return next(req) }))
		require.NoError(t, c.Add(func(req *Request, next Next) (*Response, error) { return next(req) }))
		assert.Equal(t, 2, c.Count())
	})

	t.Run("nil middleware is rejected", func(t *testing.T) {
		c := NewChain()
		require.Error(t, c.Add(nil))
	})
}
