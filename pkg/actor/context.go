// Package actor resolves the identity performing a mutation. Every record
// constructor takes an explicit actor; the fallback identity is configuration,
// not a constant baked into the types.
package actor

import "context"

// ctxKey is an unexported type used as the context key for the actor.
type ctxKey struct{}

// DefaultActor is used when neither the request nor the caller supplies an
// identity. Deployments override it through Config.
const DefaultActor = "system"

// Config carries the fallback actor identity threaded into constructors.
type Config struct {
	Default string
}

// Resolve returns the explicit actor when set, otherwise the configured
// fallback, otherwise DefaultActor.
func (c Config) Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c.Default != "" {
		return c.Default
	}
	return DefaultActor
}

// WithActor returns a new context with the given actor attached.
func WithActor(ctx context.Context, a string) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext retrieves the actor from the context. Returns "" and false if
// no actor is set.
func FromContext(ctx context.Context) (string, bool) {
	a, ok := ctx.Value(ctxKey{}).(string)
	return a, ok
}
