package auth

import (
	"context"
)

type ctxKey string

const (
	identityKey ctxKey = "identity"
)

// Identity is the caller as described by the gateway's trust headers.
// Nothing here is verified by this service: the gateway is the only party
// able to set the headers, so whatever it forwards is taken as-is.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) HasRole(role string) bool {
	return i.Role == role
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) Identity {
	if v, ok := ctx.Value(identityKey).(Identity); ok {
		return v
	}
	return Identity{}
}

func Subject(ctx context.Context) string {
	return FromContext(ctx).UserID
}
