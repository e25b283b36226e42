package web

import "sort"

// Router is an ordered collection of routes. Routes are tried in
// priority-descending order, with registration order breaking ties.
//
// Routers compose structurally: Include copies another router's routes
// into this one with a prefix prepended, once, at inclusion time. Later
// changes to the included router have no effect on the parent.
type Router struct {
	prefix string
	routes []*Route

	// ordered is the priority-sorted view of routes, re-established on
	// every registration. Find only reads it, so concurrent lookups after
	// setup need no synchronization.
	ordered []*Route
}

// RouterOption configures a router at construction time.
type RouterOption func(*Router)

// WithPrefix sets a path prefix prepended to every template registered
// on this router.
func WithPrefix(prefix string) RouterOption {
	return func(rt *Router) { rt.prefix = prefix }
}

// NewRouter returns a new, empty router.
func NewRouter(opts ...RouterOption) *Router {
	rt := &Router{}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Prefix returns the router's own path prefix.
func (rt *Router) Prefix() string { return rt.prefix }

// Register constructs a route from the template (with the router's
// prefix prepended) and appends it to the collection. It returns the
// constructed route, or a configuration error for an invalid template,
// method set or handler binding.
func (rt *Router) Register(template string, methods []string, endpoint *Endpoint, opts ...RouteOption) (*Route, error) {
	route, err := NewRoute(joinPath(rt.prefix, template), endpoint, methods, opts...)
	if err != nil {
		return nil, err
	}
	rt.add(route)
	return route, nil
}

// Include copies every route currently held by sub into this router,
// rewriting each template to prefix + template (after the parent's own
// prefix). Inclusion is a one-time structural copy: mutating sub
// afterwards does not affect this router. Routers that already contain
// included routes can themselves be included again.
func (rt *Router) Include(sub *Router, prefix string) error {
	for _, r := range sub.routes {
		opts := []RouteOption{WithPriority(r.priority)}
		if r.name != "" {
			opts = append(opts, WithName(r.name))
		}

		template := joinPath(rt.prefix, joinPath(prefix, r.pattern.template))
		copied, err := NewRoute(template, r.endpoint, r.Methods(), opts...)
		if err != nil {
			return err
		}
		rt.add(copied)
	}
	return nil
}

// Find returns the highest-priority route matching the given path and
// method, along with the converted path parameters.
//
// When no route's pattern matches the path it returns ErrNotFound; when
// patterns match but none permit the method it returns
// ErrMethodNotAllowed, preserving the 404/405 distinction upstream.
//
// A per-route parameter conversion failure is not an error: the route
// simply does not match and iteration continues.
func (rt *Router) Find(path, method string) (*Route, Params, error) {
	var methodMismatch bool

	for _, route := range rt.ordered {
		if route.AllowsMethod(method) {
			if ok, params := route.matchPath(path); ok {
				return route, params, nil
			}
			continue
		}
		// The method was rejected; check the path only until the first
		// evidence that 405 applies.
		if !methodMismatch {
			if ok, _ := route.matchPath(path); ok {
				methodMismatch = true
			}
		}
	}

	if methodMismatch {
		return nil, nil, ErrMethodNotAllowed
	}
	return nil, nil, ErrNotFound
}

// Routes returns the held routes in registration order.
// The returned slice must not be modified.
func (rt *Router) Routes() []*Route { return rt.routes }

// Lookup returns the first registered route with the given name, or nil.
func (rt *Router) Lookup(name string) *Route {
	for _, route := range rt.routes {
		if route.name == name {
			return route
		}
	}
	return nil
}

// add appends a route and re-establishes the priority-descending order,
// stable with respect to registration order. Sorting happens here, at
// registration time, never during Find.
func (rt *Router) add(route *Route) {
	rt.routes = append(rt.routes, route)
	rt.ordered = append(rt.ordered, route)
	sort.SliceStable(rt.ordered, func(i, j int) bool {
		return rt.ordered[i].priority > rt.ordered[j].priority
	})
}
