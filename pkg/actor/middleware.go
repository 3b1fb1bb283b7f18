package actor

import "net/http"

// HeaderName is the request header carrying the acting identity.
const HeaderName = "X-Actor"

// Middleware returns HTTP middleware that resolves the acting identity from
// the X-Actor header and stores it in the request context. Requests without
// the header fall back to the configured default.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := cfg.Resolve(r.Header.Get(HeaderName))
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
		})
	}
}

// FromRequest extracts the acting identity from a request whose context has
// passed through Middleware. Falls back to DefaultActor.
func FromRequest(r *http.Request) string {
	if a, ok := FromContext(r.Context()); ok && a != "" {
		return a
	}
	return DefaultActor
}
