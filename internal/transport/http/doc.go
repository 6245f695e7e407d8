// Package http implements the HTTP handlers of the survey comparison service.
// Handlers stay thin: they decode the request, call a service and render
// the result. Errors go through errors.ErrorHandler, which answers with RFC
// 7807 problem details.
//
// # Endpoints
//
//	POST /api/compare            multipart primary + secondary -> JSON report
//	POST /api/compare/report     same input -> HTML report
//	GET  /api/comparisons        recent runs, ?limit=N
//	GET  /api/comparisons/{id}   one run
//	GET  /api/health             readiness of parser, history and hub
//	GET  /api/health/live        liveness
//	GET  /api/version            build information
//	GET  /ws                     websocket event stream
//
// A survey that cannot be parsed is not a transport error. The compare
// endpoints still return the error report, with status 422 (415 for an
// unsupported file type, 413 for an oversized file), so the client renders
// the error summary in place of the tables.
package http
