package grpc

import (
	"context"

	"github.com/auth0/go-session-middleware/core"
)

// CurrentUser returns the identity resolved by the interceptor.
//
// Example:
//
//	identity, err := sessiongrpc.CurrentUser(ctx)
//	if err != nil {
//	    return nil, status.Error(codes.Internal, "no session identity")
//	}
//	fmt.Println(identity.UserID)
func CurrentUser(ctx context.Context) (*core.Identity, error) {
	return core.GetIdentity(ctx)
}

// MustCurrentUser returns the identity resolved by the interceptor or panics.
// Use only behind the interceptor on a method that is not excluded.
func MustCurrentUser(ctx context.Context) *core.Identity {
	identity, err := core.GetIdentity(ctx)
	if err != nil {
		panic(err)
	}
	return identity
}

// HasIdentity checks if an identity exists in the context.
func HasIdentity(ctx context.Context) bool {
	return core.HasIdentity(ctx)
}
