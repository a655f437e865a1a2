package actorcontext

import (
	"context"
	"strings"
)

// ActorContextKey is the request context key for the authenticated actor.
type ActorContextKey struct{}

// SystemActor is stamped on writes that happen outside a request
// (migrations, seeds, scheduled jobs).
const SystemActor = "system"

// WithActor stores the actor identifier in the context.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorContextKey{}, strings.TrimSpace(actorID))
}

// ActorFromContext returns the actor identifier from context, if set.
func ActorFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(ActorContextKey{}).(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// ActorOrSystem returns the actor identifier, falling back to SystemActor
// when the context carries none.
func ActorOrSystem(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor
	}
	return SystemActor
}
