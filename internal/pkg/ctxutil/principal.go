package ctxutil

import "context"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the authenticated caller. A nil *Principal means anonymous.
type Principal struct {
	UserID uint
	OpenID string
	Name   string
	Role   string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return p
	}
	return nil
}

type sessionKey struct{}

// WithSessionID attaches the browsing session used for shuffle stability.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}
