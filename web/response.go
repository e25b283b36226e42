package web

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Response is the value a handler returns. It accumulates a status
// code, headers, cookies and a body, and is written to the underlying
// http.ResponseWriter by the application after the middleware chain
// unwinds.
type Response struct {
	Status int
	Header http.Header
	Body   []byte

	cookies []*http.Cookie
}

// NewResponse returns an empty response with the given status code.
func NewResponse(status int) *Response {
	return &Response{
		Status: status,
		Header: make(http.Header),
	}
}

// Empty returns a response with the given status and no body.
func Empty(status int) *Response {
	return NewResponse(status)
}

// Text returns a plain text response.
func Text(status int, body string) *Response {
	resp := NewResponse(status)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Body = []byte(body)
	return resp
}

// HTML returns an HTML response.
func HTML(status int, body string) *Response {
	resp := NewResponse(status)
	resp.Header.Set("Content-Type", "text/html; charset=utf-8")
	resp.Body = []byte(body)
	return resp
}

// JSON returns a response with v encoded as a JSON body. If encoding
// fails, a 500 Internal Server Error response is returned instead.
func JSON(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		return Text(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	resp := NewResponse(status)
	resp.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp.Body = body
	return resp
}

// Redirect returns a redirect response to the given location. The
// status should be a 3xx code such as http.StatusFound or
// http.StatusPermanentRedirect.
func Redirect(status int, location string) *Response {
	resp := NewResponse(status)
	resp.Header.Set("Location", location)
	return resp
}

// SetHeader sets a response header and returns the response for
// chaining.
func (r *Response) SetHeader(key, value string) *Response {
	r.Header.Set(key, value)
	return r
}

// SetCookie appends a Set-Cookie header to the response and returns the
// response for chaining.
func (r *Response) SetCookie(c *http.Cookie) *Response {
	r.cookies = append(r.cookies, c)
	return r
}

// Write serializes the response to an http.ResponseWriter: headers,
// cookies, status line, then body.
func (r *Response) Write(w http.ResponseWriter) error {
	header := w.Header()
	for key, values := range r.Header {
		for _, v := range values {
			header.Add(key, v)
		}
	}
	for _, c := range r.cookies {
		http.SetCookie(w, c)
	}
	if len(r.Body) > 0 && header.Get("Content-Length") == "" {
		header.Set("Content-Length", strconv.Itoa(len(r.Body)))
	}

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if len(r.Body) > 0 {
		if _, err := w.Write(r.Body); err != nil {
			return err
		}
	}
	return nil
}
