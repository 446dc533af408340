package auditctx

import (
	"context"

	"go.uber.org/zap"
)

// Actor captures who triggered a dispatch, as seen by the HTTP layer.
type Actor struct {
	Subject   string
	Role      string
	RequestID string
	IPAddress string
}

type actorContextKey struct{}

// WithActor injects actor metadata into the supplied context, returning a derived context that
// callers can pass down into service layers for audit logging.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		return context.WithValue(context.Background(), actorContextKey{}, actor)
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// FromContext extracts previously stored actor metadata from the context.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// Fields renders the actor stored in ctx as log fields. It returns nil when none is present.
func Fields(ctx context.Context) []zap.Field {
	actor, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	fields := make([]zap.Field, 0, 3)
	if actor.Subject != "" {
		fields = append(fields, zap.String("actor", actor.Subject))
	}
	if actor.RequestID != "" {
		fields = append(fields, zap.String("request_id", actor.RequestID))
	}
	if actor.IPAddress != "" {
		fields = append(fields, zap.String("actor_ip", actor.IPAddress))
	}
	return fields
}
