// Package app wires the survey comparison web service together: it loads
// configuration, sets up logging and OpenTelemetry, opens the optional run
// history, builds the services and the chi router, and manages the server
// lifecycle.
//
// # Middleware order
//
//	RequestID → RealIP → (OTel → ErrorMiddleware → SecurityHeaders → CORS → RateLimit → Timeout) → handler
//
// /ws and /metrics sit outside the parenthesised chain so the websocket
// upgrade can hijack an unwrapped connection.
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down, stops
// the websocket hub, closes the history store and flushes telemetry.
package app
