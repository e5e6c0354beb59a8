// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: Answers cross-origin requests from the configured origins and handles preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//   - WithErrorPage: Replaces the body of error responses with a fixed page.
//   - WithMaxBytes: Limits the size of request bodies.
//
// Provided helpers:
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers.
package controller
