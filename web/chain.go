package web

import "fmt"

// Next is the continuation passed to a middleware: invoking it runs the
// rest of the pipeline. A middleware that returns without calling its
// continuation short-circuits the remaining layers and the terminal
// handler; that is a normal control path, not an error.
type Next func(*Request) (*Response, error)

// Middleware is a wrapper function around the rest of the pipeline.
type Middleware func(*Request, Next) (*Response, error)

// Chain accumulates middleware and folds them around a terminal handler
// into a single composed handler.
//
// The chain follows the onion pattern: the first-added middleware
// becomes the outermost layer, running first on the way in and last on
// the way out. For middleware [A, B, C] around terminal T the execution
// order is A, B, C, T and back out through C, B, A.
//
// Once Build has run the chain is frozen: further Add or Build calls
// fail with ErrChainBuilt. The composed handler is immutable, shared,
// read-only state safe for concurrent use.
type Chain struct {
	middlewares []Middleware
	composed    Next
	built       bool
}

// NewChain returns a new, empty middleware chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a middleware to the chain. It fails with ErrChainBuilt
// once the chain has been built.
func (c *Chain) Add(mw Middleware) error {
	if c.built {
		return ErrChainBuilt
	}
	if mw == nil {
		return fmt.Errorf("web: nil middleware added to chain")
	}
	c.middlewares = append(c.middlewares, mw)
	return nil
}

// Build folds the chain around the terminal handler and freezes it.
// The fold walks the middleware in reverse registration order so the
// first-registered middleware ends up outermost.
//
// Build runs exactly once; a second call fails with ErrChainBuilt and
// leaves the previously composed handler untouched.
func (c *Chain) Build(terminal Next) (Next, error) {
	if c.built {
		return nil, ErrChainBuilt
	}
	if terminal == nil {
		return nil, fmt.Errorf("web: nil terminal handler for chain build")
	}

	app := terminal
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		mw, next := c.middlewares[i], app
		app = func(req *Request) (*Response, error) {
			return mw(req, next)
		}
	}

	c.composed = app
	c.built = true
	return app, nil
}

// Count returns the number of middleware in the chain.
func (c *Chain) Count() int { return len(c.middlewares) }

// Built reports whether the chain has been frozen by Build.
func (c *Chain) Built() bool { return c.built }

// Composed returns the handler produced by Build, or nil if the chain
// has not been built yet.
func (c *Chain) Composed() Next { return c.composed }
