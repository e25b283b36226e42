package webhandlers

import (
	"errors"
	"fmt"

	"github.com/fastgi/fastgi/web"
)

// ErrInvalidFrameOption is returned when SecurityHeadersConfig.FrameOption
// is not one of the valid values: "DENY", "SAMEORIGIN", or empty string.
var ErrInvalidFrameOption = errors.New("security headers: frame option must be DENY, SAMEORIGIN, or empty")

// SecurityHeadersConfig configures the Security Headers middleware
// behaviour.
type SecurityHeadersConfig struct {
	// DisableContentTypeNosniff disables the X-Content-Type-Options:
	// nosniff header. The header is set by default (when false).
	DisableContentTypeNosniff bool

	// FrameOption sets the X-Frame-Options header value.
	// Valid values are "DENY" and "SAMEORIGIN". Defaults to "DENY".
	FrameOption string

	// DisableFrameOption skips the X-Frame-Options header entirely.
	DisableFrameOption bool

	// ReferrerPolicy sets the Referrer-Policy header value.
	// Defaults to "strict-origin-when-cross-origin".
	ReferrerPolicy string

	// HSTSMaxAge sets the max-age directive for the
	// Strict-Transport-Security header in seconds. When zero, the
	// header is not set.
	HSTSMaxAge int

	// HSTSIncludeSubDomains appends the includeSubDomains directive to
	// the Strict-Transport-Security header. Only effective when
	// HSTSMaxAge > 0.
	HSTSIncludeSubDomains bool

	// ContentSecurityPolicy sets the Content-Security-Policy header.
	// When empty, the header is not set.
	ContentSecurityPolicy string
}

// SecurityHeadersMiddleware returns a middleware that sets common
// security response headers on the exit side of the chain. It returns
// ErrInvalidFrameOption when FrameOption has an unknown value.
func SecurityHeadersMiddleware(cfg SecurityHeadersConfig) (web.Middleware, error) {
	frameOption := cfg.FrameOption
	if frameOption == "" {
		frameOption = "DENY"
	}
	switch frameOption {
	case "DENY", "SAMEORIGIN":
	default:
		return nil, ErrInvalidFrameOption
	}
	if cfg.DisableFrameOption {
		frameOption = ""
	}

	referrerPolicy := cfg.ReferrerPolicy
	if referrerPolicy == "" {
		referrerPolicy = "strict-origin-when-cross-origin"
	}

	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(req *web.Request, next web.Next) (*web.Response, error) {
		resp, err := next(req)
		if resp == nil {
			return resp, err
		}

		if !cfg.DisableContentTypeNosniff {
			resp.SetHeader("X-Content-Type-Options", "nosniff")
		}
		if frameOption != "" {
			resp.SetHeader("X-Frame-Options", frameOption)
		}
		resp.SetHeader("Referrer-Policy", referrerPolicy)
		if hsts != "" {
			resp.SetHeader("Strict-Transport-Security", hsts)
		}
		if cfg.ContentSecurityPolicy != "" {
			resp.SetHeader("Content-Security-Policy", cfg.ContentSecurityPolicy)
		}

		return resp, err
	}, nil
}
