package controller

import (
	"net/http"
	"slices"
	"strconv"
)

// corsMaxAge is how long, in seconds, browsers may cache a preflight answer.
const corsMaxAge = 600

// CORSOptions restricts which browser origins may call the JSON API.
type CORSOptions struct {
	// AllowedOrigins lists the accepted Origin values; "*" accepts any.
	AllowedOrigins []string
}

func (o CORSOptions) allowOrigin(origin string) string {
	if slices.Contains(o.AllowedOrigins, "*") {
		return "*"
	}
	if slices.Contains(o.AllowedOrigins, origin) {
		return origin
	}

	return ""
}

// WithCORS returns a middleware that answers cross-origin requests from the
// allowed origins. Requests without an Origin header pass through untouched.
// A preflight gets 204 No Content without reaching next; its CORS headers
// are only set when the origin is allowed.
func WithCORS(opts CORSOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Add("Vary", "Origin")
			allowed := opts.allowOrigin(origin)
			if allowed != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed != "" {
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
				}
				w.WriteHeader(http.StatusNoContent)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
