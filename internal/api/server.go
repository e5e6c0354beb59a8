// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the validator service.
package api

import (
	"context"
	_ "embed"
	"log/slog"
	"net"
	"net/http"
	"time"
	"validator/internal/api/handler/v1handler"
	"validator/internal/api/handler/webhandler"
	"validator/internal/config"
	"validator/internal/validation"
	"validator/pkg/controller"
	"validator/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// ErrorPageBody replaces the body of every HTML error response.
const ErrorPageBody = "Boom"

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout bounds the v1 API and the HTML form via http.TimeoutHandler.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MaxFormBytes limits request bodies of the form and the JSON API.
	MaxFormBytes int64
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// CORSOrigins are the origins allowed to call the v1 API from a browser.
	CORSOrigins []string
	// Pprof mounts the profiling endpoints.
	Pprof bool
	// SchemaURL is displayed by the form before the schema is loaded.
	SchemaURL string
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxFormBytes:      cfg.HTTP.MaxFormBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		Pprof:             cfg.HTTP.Pprof,
		SchemaURL:         cfg.Schema.URL,
	}
}

type Deps struct {
	Validation validation.Service
	// Gatherer backs the metrics endpoint; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// TimeoutBody is the v1 API response to a request that ran out of time.
const TimeoutBody = `{"code":"TIMEOUT","message":"request timed out"}`

// NewHandler builds the root handler. It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - v1 JSON API routes, with CORS and a JSON timeout response
// - the HTML form, whose error responses (timeouts included) all read ErrorPageBody
// - pprof endpoints when enabled
// It also wraps the mux with a body limit and the logging middleware.
func NewHandler(deps Deps, opts Options) http.Handler {
	mux := http.NewServeMux()
	cors := controller.WithCORS(controller.CORSOptions{AllowedOrigins: opts.CORSOrigins})

	// prometheus metrics server
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle(opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// v1 specs file
	mux.Handle("/specs/v1.yaml", cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})))
	// v1 api swagger playground
	mux.Handle("/v1/docs/", v5emb.New(
		"Schedule Validator",
		"/specs/v1.yaml",
		"/v1/docs/",
	))
	// v1 api, including its JSON 404 and 405 answers
	v1 := http.NewServeMux()
	v1handler.New(v1handler.Deps{Validation: deps.Validation}).Register(v1)
	mux.Handle("/v1/", cors(withTimeout(v1, opts.RequestTimeout, "application/json", TimeoutBody)))

	// pprof
	if opts.Pprof {
		mux.Handle(controller.PprofPrefix, controller.PprofMux())
	}

	// html form, also the fallback for unknown paths
	web := http.NewServeMux()
	webhandler.New(webhandler.Deps{Validation: deps.Validation, SchemaURL: opts.SchemaURL}).Register(web)
	form := withTimeout(web, opts.RequestTimeout, "text/plain; charset=utf-8", ErrorPageBody)
	mux.Handle("/", controller.WithErrorPage(ErrorPageBody)(form))

	// body limit
	handler := controller.WithMaxBytes(opts.MaxFormBytes)(mux)

	// logger
	handler = controller.WithLogger(handler)

	return handler
}

// withTimeout answers 503 with body once h has run for longer than d.
// A zero d disables the limit. contentType describes body; responses that
// finish in time carry their own headers.
func withTimeout(h http.Handler, d time.Duration, contentType, body string) http.Handler {
	if d <= 0 {
		return h
	}
	timeout := http.TimeoutHandler(h, d, body)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		timeout.ServeHTTP(w, r)
	})
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// Requests inherit the values of ctx, such as its logger, but not its
// cancellation, so that shutdown can drain them.
func NewServer(ctx context.Context, deps Deps, opts Options) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           NewHandler(deps, opts),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
		ErrorLog:          logger.StdLogger(ctx, slog.LevelError),
		BaseContext:       func(_ net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
}
