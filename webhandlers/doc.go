// Package webhandlers provides ready-made middleware for the web
// package: request IDs, structured request logging, panic recovery,
// basic authentication, CORS, security headers and server
// identification.
//
// Each middleware is created from a config struct:
//
//	app.Use(webhandlers.RequestIDMiddleware(webhandlers.RequestIDConfig{}))
//	app.Use(webhandlers.RecoveryMiddleware(webhandlers.RecoveryConfig{}))
//
// Constructors that validate their configuration return an error
// alongside the middleware:
//
//	mw, err := webhandlers.BasicAuthMiddleware(webhandlers.BasicAuthConfig{
//		Credentials: map[string]string{"admin": "secret"},
//	})
package webhandlers
