// Package requestctx carries request-scoped values through context.Context.
package requestctx

import (
	"context"
	"time"

	"github.com/akave-ai/alephweb/internal/apperr"
	"github.com/akave-ai/alephweb/internal/model"
)

type startKey struct{}

type authKey struct{}

// WithStart records the time the request entered the pipeline.
func WithStart(ctx context.Context, start time.Time) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, startKey{}, start)
}

// Start returns the recorded request start time.
func Start(ctx context.Context) (time.Time, bool) {
	if ctx == nil {
		return time.Time{}, false
	}
	start, ok := ctx.Value(startKey{}).(time.Time)
	return start, ok
}

// Elapsed returns now minus the recorded start time. It fails with a
// MissingContext error if no start time was recorded.
func Elapsed(ctx context.Context, now time.Time) (time.Duration, error) {
	start, ok := Start(ctx)
	if !ok {
		return 0, apperr.NewMissingContext("request start time")
	}
	d := now.Sub(start)
	if d < 0 {
		d = 0
	}
	return d, nil
}

// Auth is the caller's authentication state for one request.
type Auth struct {
	LoggedIn bool
	Role     *model.Role
	// Roles is every role id the request acts as, system roles included.
	Roles []string
}

// Anonymous returns the Auth of an unauthenticated caller.
func Anonymous() Auth {
	return Auth{Roles: []string{model.SystemGuest}}
}

// Authenticated returns the Auth of a caller resolved to role.
func Authenticated(role *model.Role) Auth {
	if role == nil {
		return Anonymous()
	}
	roles := []string{model.SystemGuest, model.SystemUser, role.ID}
	for _, g := range role.Groups {
		if g != "" && g != role.ID {
			roles = append(roles, g)
		}
	}
	return Auth{LoggedIn: true, Role: role, Roles: roles}
}

// RoleID returns the logged-in role's id, or nil for anonymous callers.
func (a Auth) RoleID() *string {
	if !a.LoggedIn || a.Role == nil {
		return nil
	}
	id := a.Role.ID
	return &id
}

// IsAdmin reports whether the caller is a logged-in administrator.
func (a Auth) IsAdmin() bool {
	return a.LoggedIn && a.Role != nil && a.Role.IsAdmin
}

// WithAuth stores the caller's authentication state.
func WithAuth(ctx context.Context, auth Auth) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, authKey{}, auth)
}

// AuthFrom returns the stored authentication state, or Anonymous when none is set.
func AuthFrom(ctx context.Context) Auth {
	if ctx == nil {
		return Anonymous()
	}
	auth, ok := ctx.Value(authKey{}).(Auth)
	if !ok {
		return Anonymous()
	}
	return auth
}
