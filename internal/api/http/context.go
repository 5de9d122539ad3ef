package http

import (
	"context"

	"library-service-backend/internal/domain"
)

type contextKey string

const actorKey contextKey = "actor"

// actorFromContext returns the request's actor. The zero Actor (anonymous)
// is returned when the middleware attached nothing.
func actorFromContext(ctx context.Context) domain.Actor {
	if actor, ok := ctx.Value(actorKey).(domain.Actor); ok {
		return actor
	}
	return domain.Actor{}
}

func withActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}
