package web

import "errors"

// ErrNotFound is returned by Router.Find when no route's path pattern
// matches the request path. Triggers 404 Not Found per RFC 9110
// Section 15.5.5.
var ErrNotFound = errors.New("no matching route was found")

// ErrMethodNotAllowed is returned by Router.Find when at least one
// route's path pattern matches but none of the matching routes permit
// the request method. Triggers 405 Method Not Allowed per RFC 9110
// Section 15.5.6.
var ErrMethodNotAllowed = errors.New("method is not allowed")

// ErrChainBuilt is returned when a middleware chain is modified or
// rebuilt after Build has frozen it.
var ErrChainBuilt = errors.New("middleware chain is already built")
