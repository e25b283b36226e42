package webhandlers

import (
	"errors"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/fastgi/fastgi/web"
)

// ErrWildcardCredentials is returned when AllowedOrigins contains "*" and
// AllowCredentials is true. Use AllowOriginFunc for dynamic origin checks
// with credentials.
var ErrWildcardCredentials = errors.New("wildcard origin \"*\" cannot be used with AllowCredentials; use AllowOriginFunc instead")

// CORSConfig configures the CORS middleware behaviour.
//
// Spec references:
//   - CORS protocol: https://fetch.spec.whatwg.org/#http-cors-protocol
//   - Web Origin:    https://www.rfc-editor.org/rfc/rfc6454
//   - HTTP Vary:     https://www.rfc-editor.org/rfc/rfc9110#field.vary
type CORSConfig struct {
	// AllowedOrigins is a list of exact origin strings, "*" for wildcard,
	// or subdomain wildcard patterns like "https://*.example.com".
	AllowedOrigins []string

	// AllowOriginFunc is an optional dynamic callback invoked when the
	// origin does not match any entry in AllowedOrigins. Return true to allow.
	AllowOriginFunc func(origin string) bool

	// AllowedMethods overrides the set of methods advertised in preflight
	// and actual responses. When empty the middleware discovers the methods
	// the router's routes permit for the request path.
	AllowedMethods []string

	// AllowedHeaders lists the headers the client may send in the actual
	// request. When empty the middleware reflects the Access-Control-Request-Headers
	// value from the preflight request. Use "*" to reflect all requested headers.
	AllowedHeaders []string

	// ExposeHeaders lists the headers the browser may expose to client code.
	ExposeHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials: true.
	// Per the Fetch Standard, "*" cannot be used as Allow-Origin when
	// credentials are enabled; the middleware returns ErrWildcardCredentials.
	AllowCredentials bool

	// MaxAge is the duration in seconds a preflight result may be cached.
	// Positive values are sent as-is, negative values emit "0", zero omits the header.
	MaxAge int

	// OptionsStatusCode overrides the HTTP status code for preflight responses.
	// When zero (default) the middleware uses 204 No Content.
	OptionsStatusCode int

	// OptionsPassthrough, when true, sets preflight headers but forwards the
	// request through the rest of the chain instead of short-circuiting.
	OptionsPassthrough bool

	// AllowPrivateNetwork, when true, responds to Access-Control-Request-Private-Network
	// preflight headers with Access-Control-Allow-Private-Network: true.
	// See https://wicg.github.io/private-network-access/
	AllowPrivateNetwork bool
}

// wildcardPattern represents a subdomain wildcard pattern split at the "*".
type wildcardPattern struct {
	prefix string
	suffix string
}

// hasWildcardOrigin reports whether AllowedOrigins contains "*".
func (c *CORSConfig) hasWildcardOrigin() bool {
	return slices.Contains(c.AllowedOrigins, "*")
}

// parseOrigins normalizes AllowedOrigins to lowercase and splits them into
// exact matches and wildcard patterns. Returns an error if a pattern contains
// multiple wildcards.
func parseOrigins(origins []string) ([]string, []wildcardPattern, error) {
	var exact []string
	var patterns []wildcardPattern

	for _, o := range origins {
		if o == "*" {
			exact = append(exact, o)
			continue
		}

		lower := strings.ToLower(o)

		if strings.Contains(lower, "*") {
			parts := strings.SplitN(lower, "*", 2)
			if strings.Contains(parts[1], "*") {
				return nil, nil, errors.New("origin pattern contains multiple wildcards: " + o)
			}

			patterns = append(patterns, wildcardPattern{
				prefix: parts[0],
				suffix: parts[1],
			})
		} else {
			exact = append(exact, lower)
		}
	}

	return exact, patterns, nil
}

// matchOrigin reports whether originLower matches any exact origin or wildcard pattern.
func matchOrigin(originLower string, exactOrigins []string, patterns []wildcardPattern) bool {
	for _, o := range exactOrigins {
		if o == "*" || o == originLower {
			return true
		}
	}

	for _, wp := range patterns {
		if len(originLower) >= len(wp.prefix)+len(wp.suffix) &&
			strings.HasPrefix(originLower, wp.prefix) &&
			strings.HasSuffix(originLower, wp.suffix) {
			return true
		}
	}

	return false
}

// setCORSOriginHeaders sets Access-Control-Allow-Origin, Vary, and
// Access-Control-Allow-Credentials on the response.
func setCORSOriginHeaders(resp *web.Response, cfg *CORSConfig, origin string) {
	if cfg.hasWildcardOrigin() && !cfg.AllowCredentials {
		resp.Header.Set("Access-Control-Allow-Origin", "*")
	} else {
		resp.Header.Set("Access-Control-Allow-Origin", origin)
		resp.Header.Add("Vary", "Origin")
	}

	if cfg.AllowCredentials {
		resp.Header.Set("Access-Control-Allow-Credentials", "true")
	}
}

// routeMethods returns the union of methods the router's routes permit for
// the given path, sorted alphabetically.
func routeMethods(rt *web.Router, path string) []string {
	set := make(map[string]struct{})
	for _, route := range rt.Routes() {
		for _, m := range route.Methods() {
			if ok, _ := route.Matches(path, m); ok {
				set[m] = struct{}{}
			}
		}
	}

	methods := make([]string, 0, len(set))
	for m := range set {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// CORSMiddleware returns a middleware that implements the CORS protocol
// per the Fetch Standard (https://fetch.spec.whatwg.org/#http-cors-protocol).
// It validates the Origin header (RFC 6454), short-circuits preflight
// OPTIONS requests before dispatch, and sets the appropriate response
// headers.
//
// The router is consulted to discover the methods advertised for a path
// when AllowedMethods is empty. Because the middleware runs outside
// dispatch, preflights for routes without an explicit OPTIONS handler are
// answered here instead of falling through to a 405.
//
// It returns an error if the configuration is invalid (e.g. wildcard origin
// combined with AllowCredentials).
func CORSMiddleware(rt *web.Router, cfg CORSConfig) (web.Middleware, error) {
	if cfg.hasWildcardOrigin() && cfg.AllowCredentials {
		return nil, ErrWildcardCredentials
	}

	exactOrigins, wildcardPatterns, err := parseOrigins(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	isAllowed := func(originLower, rawOrigin string) bool {
		if matchOrigin(originLower, exactOrigins, wildcardPatterns) {
			return true
		}

		if cfg.AllowOriginFunc != nil {
			return cfg.AllowOriginFunc(rawOrigin)
		}

		return false
	}

	hasSpecificOrigins := !cfg.hasWildcardOrigin() &&
		(len(exactOrigins) > 0 || len(wildcardPatterns) > 0 || cfg.AllowOriginFunc != nil)

	headersWildcard := slices.Contains(cfg.AllowedHeaders, "*")

	preflightStatus := cfg.OptionsStatusCode
	if preflightStatus == 0 {
		preflightStatus = http.StatusNoContent
	}

	allowedMethods := func(path string) []string {
		if len(cfg.AllowedMethods) > 0 {
			return cfg.AllowedMethods
		}
		return routeMethods(rt, path)
	}

	setPreflightHeaders := func(resp *web.Response, req *web.Request) {
		if methods := allowedMethods(req.Path()); len(methods) > 0 {
			resp.Header.Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
		}

		if headersWildcard {
			if reqHeaders := req.Header("Access-Control-Request-Headers"); reqHeaders != "" {
				resp.Header.Set("Access-Control-Allow-Headers", reqHeaders)
			}
		} else if len(cfg.AllowedHeaders) > 0 {
			resp.Header.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ","))
		} else if reqHeaders := req.Header("Access-Control-Request-Headers"); reqHeaders != "" {
			resp.Header.Set("Access-Control-Allow-Headers", reqHeaders)
		}

		if cfg.MaxAge > 0 {
			resp.Header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		} else if cfg.MaxAge < 0 {
			resp.Header.Set("Access-Control-Max-Age", "0")
		}

		if cfg.AllowPrivateNetwork && req.Header("Access-Control-Request-Private-Network") == "true" {
			resp.Header.Set("Access-Control-Allow-Private-Network", "true")
			resp.Header.Add("Vary", "Access-Control-Request-Private-Network")
		}

		resp.Header.Add("Vary", "Access-Control-Request-Method")
		resp.Header.Add("Vary", "Access-Control-Request-Headers")
	}

	return func(req *web.Request, next web.Next) (*web.Response, error) {
		rawOrigin := req.Header("Origin")

		if rawOrigin == "" {
			resp, err := next(req)
			// Responses to non-CORS requests still vary by Origin when
			// only specific origins are allowed.
			if resp != nil && hasSpecificOrigins {
				resp.Header.Add("Vary", "Origin")
			}
			return resp, err
		}

		originLower := strings.ToLower(rawOrigin)

		if !isAllowed(originLower, rawOrigin) {
			return next(req)
		}

		if req.Method() == http.MethodOptions && req.Header("Access-Control-Request-Method") != "" {
			if cfg.OptionsPassthrough {
				resp, err := next(req)
				if resp == nil {
					resp = web.Empty(preflightStatus)
				}
				setCORSOriginHeaders(resp, &cfg, rawOrigin)
				setPreflightHeaders(resp, req)
				return resp, err
			}

			resp := web.Empty(preflightStatus)
			setCORSOriginHeaders(resp, &cfg, rawOrigin)
			setPreflightHeaders(resp, req)
			return resp, nil
		}

		resp, err := next(req)
		if resp == nil {
			return resp, err
		}

		setCORSOriginHeaders(resp, &cfg, rawOrigin)

		if methods := allowedMethods(req.Path()); len(methods) > 0 {
			resp.Header.Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
		}

		if len(cfg.ExposeHeaders) > 0 {
			resp.Header.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ","))
		}

		return resp, err
	}, nil
}
