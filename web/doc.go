// Package web implements the core of a minimal web-serving framework:
// a path-pattern router with typed parameters and priorities, an onion
// middleware chain, request/response carriers and a top-level
// application object.
//
// # Path Templates
//
// Routes are declared with path templates containing literal segments
// and named parameters written as {name} or {name:kind}:
//
//	app.Get("/users/{user_id:int}", web.NewEndpoint(getUser, web.P("user_id")))
//	app.Get("/files/{filepath:multipath}", web.NewEndpoint(getFile, web.P("filepath")))
//
// Supported kinds:
//
//	str        one or more non-slash characters (default)
//	int        one or more digits, converted to int64
//	float      digits with optional fractional part, converted to float64
//	uuid       canonical hyphenated form (RFC 4122), converted to uuid.UUID
//	multipath  the remainder of the path, slashes included, possibly empty
//
// Glob wildcards (* and **) are rejected at registration; a multipath
// parameter captures trailing segments instead.
//
// # Parameter Bindings
//
// Each endpoint declares the parameters its handler expects. The
// declaration is validated against the compiled pattern when the route
// is constructed: a name present on only one side, or a declared kind
// that disagrees with the pattern, is a configuration error raised at
// setup time, never during request handling.
//
//	ep := web.NewEndpoint(handler, web.Typed("user_id", web.KindInt))
//
// # Priorities
//
// Candidate routes are tried in priority-descending order; equal
// priorities preserve registration order. This lets a literal route
// shadow a parameterized one:
//
//	app.Get("/special/priority", ep1, web.WithPriority(10))
//	app.Get("/special/{segment}", ep2, web.WithPriority(5))
//	app.Get("/special/{path:multipath}", ep3, web.WithPriority(1))
//
// # Router Composition
//
// Routers compose with Include, which copies the sub-router's routes
// under a prefix once, at inclusion time:
//
//	api := web.NewRouter(web.WithPrefix("/api"))
//	api.Register("/users", nil, ep)
//	app.Include(api, "/v1") // serves /v1/api/users
//
// # Middleware
//
// Middleware wrap the pipeline in registration order, first-registered
// outermost. A middleware receives the request and a continuation; not
// invoking the continuation short-circuits the rest of the pipeline:
//
//	app.Use(func(req *web.Request, next web.Next) (*web.Response, error) {
//		if req.Header("Authorization") == "" {
//			return web.Text(http.StatusUnauthorized, "missing credentials"), nil
//		}
//		return next(req)
//	})
//
// The chain is folded into a single composed handler exactly once,
// before the first request; adding middleware afterwards fails with
// ErrChainBuilt.
//
// # Application Lifecycle
//
// The App owns the router and chain, runs startup and shutdown hooks,
// and serves with optional cleartext HTTP/2:
//
//	app := web.New(web.WithLogger(logger))
//	app.OnStartup(openDatabase)
//	app.OnShutdown(closeDatabase)
//	err := app.Serve(ctx, ":8080")
//
// Matching and composition are synchronous computations; the composed
// handler is immutable, shared state safe for concurrent requests.
package web
