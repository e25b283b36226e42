package web

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// HandlerFunc is the unit of work bound to a route. It receives the
// request carrier and the converted path parameters and returns a
// response value or a handling error.
type HandlerFunc func(*Request, Params) (*Response, error)

// Binding declares a path parameter the handler expects. Bindings are
// validated structurally against the compiled pattern at route
// construction, replacing runtime signature introspection.
type Binding struct {
	Name string
	Kind Kind

	typed bool
}

// P declares an untyped parameter binding. The parameter takes whatever
// kind the path template assigns it.
func P(name string) Binding {
	return Binding{Name: name}
}

// Typed declares a parameter binding with an expected kind. Route
// construction fails when the declared kind disagrees with the path
// parameter's kind.
func Typed(name string, kind Kind) Binding {
	return Binding{Name: name, Kind: kind, typed: true}
}

// Endpoint pairs a handler function with its declared parameter
// bindings. It is the adapter a Route invokes after a successful match.
type Endpoint struct {
	handler  HandlerFunc
	bindings []Binding
}

// NewEndpoint creates an endpoint from a handler and its declared
// parameter bindings.
func NewEndpoint(handler HandlerFunc, bindings ...Binding) *Endpoint {
	return &Endpoint{handler: handler, bindings: bindings}
}

// knownMethods is the fixed set of acceptable HTTP method names.
var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodDelete:  {},
	http.MethodPatch:   {},
	http.MethodHead:    {},
	http.MethodOptions: {},
}

// Route binds a compiled pattern, a method set, a priority and an
// endpoint. Routes are created during application setup and never
// mutated afterwards.
type Route struct {
	pattern  *Pattern
	endpoint *Endpoint
	methods  map[string]struct{}
	priority int
	name     string
}

// RouteOption configures a route at construction time.
type RouteOption func(*Route)

// WithName assigns a name to the route.
func WithName(name string) RouteOption {
	return func(r *Route) { r.name = name }
}

// WithPriority assigns a matching priority to the route. Higher
// priorities are tried first; the default is 0.
func WithPriority(priority int) RouteOption {
	return func(r *Route) { r.priority = priority }
}

// NewRoute constructs a route from a path template, an endpoint and a
// method set. The template is normalized (trailing slash stripped except
// for the root path), the method names are validated against the fixed
// known set, and the endpoint's declared bindings are checked against
// the compiled pattern's parameters. All validation failures are
// configuration errors raised here, never at request time.
//
// An empty method set defaults to GET.
func NewRoute(template string, endpoint *Endpoint, methods []string, opts ...RouteOption) (*Route, error) {
	if endpoint == nil || endpoint.handler == nil {
		return nil, fmt.Errorf("web: route %q has no handler", template)
	}

	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}

	methodSet := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		upper := strings.ToUpper(m)
		if _, ok := knownMethods[upper]; !ok {
			return nil, fmt.Errorf("web: invalid HTTP method %q for route %q", m, template)
		}
		methodSet[upper] = struct{}{}
	}

	normalized := normalizePath(template)

	pattern, err := CompilePattern(normalized)
	if err != nil {
		return nil, err
	}

	if err := validateBindings(normalized, pattern.params, endpoint.bindings); err != nil {
		return nil, err
	}

	route := &Route{
		pattern:  pattern,
		endpoint: endpoint,
		methods:  methodSet,
	}
	for _, opt := range opts {
		opt(route)
	}

	return route, nil
}

// validateBindings checks that declared binding names exactly match the
// pattern's parameter names in both directions, and that declared kinds
// agree with the pattern's kinds. A str declaration is compatible with a
// multipath parameter, which captures a plain string.
func validateBindings(template string, params []ParamSpec, bindings []Binding) error {
	kinds := make(map[string]Kind, len(params))
	for _, spec := range params {
		kinds[spec.Name] = spec.Kind
	}

	declared := make(map[string]bool, len(bindings))
	var extra []string
	for _, b := range bindings {
		if declared[b.Name] {
			return fmt.Errorf("web: duplicated binding %q for route %q", b.Name, template)
		}
		declared[b.Name] = true

		kind, ok := kinds[b.Name]
		if !ok {
			extra = append(extra, b.Name)
			continue
		}
		if b.typed && b.Kind != kind && !(b.Kind == KindString && kind == KindMultiSegment) {
			return fmt.Errorf("web: parameter %q type mismatch for route %q: pattern expects %s, binding declares %s",
				b.Name, template, kind, b.Kind)
		}
	}

	var missing []string
	for _, spec := range params {
		if !declared[spec.Name] {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("web: route %q defines path parameters %v with no matching handler bindings", template, missing)
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("web: handler declares parameters %v not present in route %q", extra, template)
	}

	return nil
}

// Template returns the normalized path template of the route.
func (r *Route) Template() string { return r.pattern.template }

// Pattern returns the compiled pattern of the route.
func (r *Route) Pattern() *Pattern { return r.pattern }

// Name returns the optional route name.
func (r *Route) Name() string { return r.name }

// Priority returns the route's matching priority.
func (r *Route) Priority() int { return r.priority }

// Methods returns the route's method set, sorted alphabetically.
func (r *Route) Methods() []string {
	methods := make([]string, 0, len(r.methods))
	for m := range r.methods {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// AllowsMethod reports whether the route permits the given HTTP method.
func (r *Route) AllowsMethod(method string) bool {
	_, ok := r.methods[strings.ToUpper(method)]
	return ok
}

// Matches reports whether the route matches the given path and method,
// returning the converted path parameters on success. The method
// membership test runs first as a cheap reject.
func (r *Route) Matches(path, method string) (bool, Params) {
	if !r.AllowsMethod(method) {
		return false, nil
	}
	return r.matchPath(path)
}

// matchPath evaluates the path against the compiled pattern,
// disregarding the method set.
//
// A segment count heuristic rejects most non-matching paths before the
// regexp runs: the counts must be equal raw or after trailing-slash
// normalization, unless the route has a multipath tail and the request
// carries extra segments.
//
// Routes with a tail parameter try the raw, unnormalized path first so
// that an empty tail capture at a trailing slash is representable; when
// the raw attempt matches the regexp, its conversion outcome is final.
// Otherwise the normalized path is tried.
func (r *Route) matchPath(path string) (bool, Params) {
	rawSegments := countSegments(path)
	normSegments := countSegments(normalizePath(path))

	ok := rawSegments == r.pattern.segments ||
		normSegments == r.pattern.segments ||
		(rawSegments > r.pattern.segments && r.pattern.hasTail)
	if !ok {
		return false, nil
	}

	if r.pattern.hasTail {
		if captures := r.pattern.captures(path); captures != nil {
			params, err := r.pattern.convert(captures)
			if err != nil {
				return false, nil
			}
			return true, params
		}
	}

	captures := r.pattern.captures(normalizePath(path))
	if captures == nil {
		return false, nil
	}
	params, err := r.pattern.convert(captures)
	if err != nil {
		// A failed conversion means this route does not match; the
		// router moves on to lower-priority candidates.
		return false, nil
	}
	return true, params
}

// Handle invokes the route's endpoint with the request and the
// converted path parameters.
func (r *Route) Handle(req *Request, params Params) (*Response, error) {
	return r.endpoint.handler(req, params)
}

func (r *Route) String() string {
	s := fmt.Sprintf("<Route %s %s", strings.Join(r.Methods(), ","), r.pattern.template)
	if r.priority != 0 {
		s += fmt.Sprintf(" priority=%d", r.priority)
	}
	return s + ">"
}
