package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Hook is a lifecycle callback run during application startup or
// shutdown.
type Hook func(context.Context) error

// App is the top-level application object. It owns the router, the
// middleware chain and the configuration values its components need;
// nothing is looked up through ambient state.
//
// The composed handler is built exactly once, before the first request
// is served, and is safe for concurrent use afterwards.
type App struct {
	router *Router
	chain  *Chain
	logger *slog.Logger

	h2cEnabled      bool
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration

	startupHooks  []Hook
	shutdownHooks []Hook

	startOnce sync.Once
	startErr  error
	composed  Next
}

// AppOption configures an App at construction time.
type AppOption func(*App)

// WithLogger sets the structured logger used by the application.
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) { a.logger = logger }
}

// WithRouter sets the router the application dispatches through.
func WithRouter(router *Router) AppOption {
	return func(a *App) { a.router = router }
}

// WithH2C enables cleartext HTTP/2 on the application's server.
func WithH2C() AppOption {
	return func(a *App) { a.h2cEnabled = true }
}

// WithTimeouts sets the server's read and write timeouts.
func WithTimeouts(read, write time.Duration) AppOption {
	return func(a *App) {
		a.readTimeout = read
		a.writeTimeout = write
	}
}

// WithShutdownTimeout sets how long Serve waits for in-flight requests
// during graceful shutdown. Defaults to 10 seconds.
func WithShutdownTimeout(d time.Duration) AppOption {
	return func(a *App) { a.shutdownTimeout = d }
}

// New returns a new application.
func New(opts ...AppOption) *App {
	a := &App{
		router:          NewRouter(),
		chain:           NewChain(),
		logger:          slog.Default(),
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the application's router.
func (a *App) Router() *Router { return a.router }

// Chain returns the application's middleware chain.
func (a *App) Chain() *Chain { return a.chain }

// Use appends a middleware to the chain. It fails with ErrChainBuilt
// once the application has started.
func (a *App) Use(mw Middleware) error { return a.chain.Add(mw) }

// OnStartup registers a hook run during Startup, after the middleware
// chain is built.
func (a *App) OnStartup(h Hook) { a.startupHooks = append(a.startupHooks, h) }

// OnShutdown registers a hook run during Shutdown.
func (a *App) OnShutdown(h Hook) { a.shutdownHooks = append(a.shutdownHooks, h) }

// Handle registers a route on the application's router.
func (a *App) Handle(template string, methods []string, endpoint *Endpoint, opts ...RouteOption) error {
	_, err := a.router.Register(template, methods, endpoint, opts...)
	return err
}

// Get registers a GET route.
func (a *App) Get(template string, endpoint *Endpoint, opts ...RouteOption) error {
	return a.Handle(template, []string{http.MethodGet}, endpoint, opts...)
}

// Post registers a POST route.
func (a *App) Post(template string, endpoint *Endpoint, opts ...RouteOption) error {
	return a.Handle(template, []string{http.MethodPost}, endpoint, opts...)
}

// Put registers a PUT route.
func (a *App) Put(template string, endpoint *Endpoint, opts ...RouteOption) error {
	return a.Handle(template, []string{http.MethodPut}, endpoint, opts...)
}

// Delete registers a DELETE route.
func (a *App) Delete(template string, endpoint *Endpoint, opts ...RouteOption) error {
	return a.Handle(template, []string{http.MethodDelete}, endpoint, opts...)
}

// Patch registers a PATCH route.
func (a *App) Patch(template string, endpoint *Endpoint, opts ...RouteOption) error {
	return a.Handle(template, []string{http.MethodPatch}, endpoint, opts...)
}

// Head registers a HEAD route.
func (a *App) Head(template string, endpoint *Endpoint, opts ...RouteOption) error {
	return a.Handle(template, []string{http.MethodHead}, endpoint, opts...)
}

// Options registers an OPTIONS route.
func (a *App) Options(template string, endpoint *Endpoint, opts ...RouteOption) error {
	return a.Handle(template, []string{http.MethodOptions}, endpoint, opts...)
}

// Include copies another router's routes into the application's router
// under the given prefix.
func (a *App) Include(sub *Router, prefix string) error {
	return a.router.Include(sub, prefix)
}

// Startup builds the middleware chain around router dispatch and runs
// the registered startup hooks in order. It is safe to call multiple
// times; the work happens exactly once and subsequent calls return the
// first outcome.
func (a *App) Startup(ctx context.Context) error {
	a.startOnce.Do(func() {
		composed, err := a.chain.Build(a.dispatch)
		if err != nil {
			a.startErr = err
			return
		}
		a.composed = composed

		for _, hook := range a.startupHooks {
			if err := hook(ctx); err != nil {
				a.startErr = fmt.Errorf("web: startup hook: %w", err)
				return
			}
		}
	})
	return a.startErr
}

// Shutdown runs the registered shutdown hooks in order, collecting
// their errors.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	for _, hook := range a.shutdownHooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// dispatch is the terminal handler the middleware chain wraps: it
// resolves the route, attaches the match to the request and invokes the
// route's endpoint. Routing misses are rendered as 404 or 405 responses
// rather than errors.
func (a *App) dispatch(req *Request) (*Response, error) {
	route, params, err := a.router.Find(req.Path(), req.Method())
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		resp := Text(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		if allowed := a.allowedMethods(req.Path()); len(allowed) > 0 {
			// RFC 9110 Section 15.5.6: a 405 response must carry Allow.
			resp.SetHeader("Allow", strings.Join(allowed, ", "))
		}
		return resp, nil
	case errors.Is(err, ErrNotFound):
		return Text(http.StatusNotFound, http.StatusText(http.StatusNotFound)), nil
	case err != nil:
		return nil, err
	}

	req.setMatch(route, params)
	return route.Handle(req, params)
}

// allowedMethods returns the union of methods permitted by routes whose
// pattern matches the given path, sorted alphabetically.
func (a *App) allowedMethods(path string) []string {
	set := make(map[string]struct{})
	for _, route := range a.router.Routes() {
		if ok, _ := route.matchPath(path); ok {
			for m := range route.methods {
				set[m] = struct{}{}
			}
		}
	}
	allowed := make([]string, 0, len(set))
	for m := range set {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	return allowed
}

// ServeHTTP implements http.Handler: it builds the request carrier,
// runs it through the composed middleware pipeline and writes the
// resulting response. The pipeline is built on first use if Startup has
// not been called explicitly.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := a.Startup(r.Context()); err != nil {
		a.logger.Error("application startup failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	req, err := NewRequest(r)
	if err != nil {
		a.logger.Warn("failed to read request body", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	resp, err := a.composed(req)
	if err != nil {
		a.logger.Error("request handling failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		resp = Text(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	if resp == nil {
		resp = Empty(http.StatusNoContent)
	}

	if err := resp.Write(w); err != nil {
		a.logger.Warn("failed to write response", slog.Any("error", err))
	}
}

// Serve starts an HTTP server on addr and blocks until ctx is cancelled
// or the server fails. On cancellation it drains in-flight requests for
// up to the shutdown timeout and then runs the shutdown hooks.
func (a *App) Serve(ctx context.Context, addr string) error {
	if err := a.Startup(ctx); err != nil {
		return err
	}

	var handler http.Handler = a
	if a.h2cEnabled {
		handler = h2c.NewHandler(a, &http2.Server{})
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  a.readTimeout,
		WriteTimeout: a.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	a.logger.Info("server listening", slog.String("addr", addr), slog.Bool("h2c", a.h2cEnabled))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return a.Shutdown(ctx)
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(drainCtx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Shutdown(drainCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
