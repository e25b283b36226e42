package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is the carrier handed to middleware and handlers. It wraps
// the underlying *http.Request with a fully read body and accessors for
// query parameters, headers and cookies, plus the route match outcome.
//
// A Request is request-scoped and never shared across requests.
type Request struct {
	raw   *http.Request
	body  []byte
	query url.Values

	params Params
	route  *Route
}

// NewRequest wraps an *http.Request, reading the body in full so
// handlers can consume it repeatedly.
func NewRequest(r *http.Request) (*Request, error) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}
	return &Request{raw: r, body: body}, nil
}

// Raw returns the underlying *http.Request.
func (r *Request) Raw() *http.Request { return r.raw }

// Context returns the underlying request context.
func (r *Request) Context() context.Context { return r.raw.Context() }

// SetValue stores a request-scoped value in the underlying context.
func (r *Request) SetValue(key, value any) {
	r.raw = r.raw.WithContext(context.WithValue(r.raw.Context(), key, value))
}

// Value returns a request-scoped value stored with SetValue, or nil.
func (r *Request) Value(key any) any { return r.raw.Context().Value(key) }

// Method returns the HTTP method of the request.
func (r *Request) Method() string { return r.raw.Method }

// Path returns the URL path of the request.
func (r *Request) Path() string { return r.raw.URL.Path }

// URL returns the request URL.
func (r *Request) URL() *url.URL { return r.raw.URL }

// Query returns the parsed query string values, parsed once and cached.
func (r *Request) Query() url.Values {
	if r.query == nil {
		r.query = r.raw.URL.Query()
	}
	return r.query
}

// QueryParam returns the first value of the named query parameter, or
// the empty string.
func (r *Request) QueryParam(name string) string {
	return r.Query().Get(name)
}

// QueryParams returns all values of the named query parameter.
func (r *Request) QueryParams(name string) []string {
	return r.Query()[name]
}

// Header returns the first value of the named request header.
func (r *Request) Header(name string) string {
	return r.raw.Header.Get(name)
}

// Headers returns the full request header map.
func (r *Request) Headers() http.Header { return r.raw.Header }

// Cookie returns the value of the named cookie and whether it was set.
func (r *Request) Cookie(name string) (string, bool) {
	c, err := r.raw.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// Cookies returns all cookies sent with the request.
func (r *Request) Cookies() []*http.Cookie { return r.raw.Cookies() }

// Body returns the raw request body.
func (r *Request) Body() []byte { return r.body }

// Text returns the request body decoded as a string.
func (r *Request) Text() string { return string(r.body) }

// ContentType returns the media type of the request body without
// parameters, lowercased.
func (r *Request) ContentType() string {
	ct := r.raw.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i != -1 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// IsJSON reports whether the request carries a JSON body.
func (r *Request) IsJSON() bool {
	ct := r.ContentType()
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

// IsForm reports whether the request carries form-encoded data.
func (r *Request) IsForm() bool {
	ct := r.ContentType()
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// BindJSON decodes the request body as JSON into v.
// By default the decoder rejects unknown fields that do not map to
// exported struct fields. Pass true to allow unknown fields.
// Exactly one JSON value must be present in the body; trailing data is
// an error.
func (r *Request) BindJSON(v any, allowUnknownFields ...bool) error {
	dec := json.NewDecoder(bytes.NewReader(r.body))

	if len(allowUnknownFields) == 0 || !allowUnknownFields[0] {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing data after JSON value")
	}

	return nil
}

// Params returns the path parameters extracted by the route match, or
// nil before dispatch.
func (r *Request) Params() Params { return r.params }

// Route returns the matched route, or nil before dispatch.
func (r *Request) Route() *Route { return r.route }

// setMatch attaches the route match outcome to the request.
func (r *Request) setMatch(route *Route, params Params) {
	r.route = route
	r.params = params
}
