package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpupo63/taskmanager/auth"
)

type keyType string

const (
	sessionKey keyType = "session"
)

// ctxWithSession adds the request's session to the context
func ctxWithSession(ctx context.Context, s *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// ctxGetSession retrieves the session from the context. Requests that did not pass
// through the session middleware get a detached empty session.
func ctxGetSession(ctx context.Context) *auth.Session {
	if s, ok := ctx.Value(sessionKey).(*auth.Session); ok && s != nil {
		return s
	}
	return &auth.Session{}
}

// ctxGetUserID retrieves the caller's id, uuid.Nil when unauthenticated
func ctxGetUserID(ctx context.Context) uuid.UUID {
	return ctxGetSession(ctx).UserID
}
