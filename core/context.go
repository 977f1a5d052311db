package core

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	identityKey contextKey = iota
)

// SetIdentity stores a resolved identity in the context.
// This is a helper function for adapters to set the identity after resolution.
func SetIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the identity stored by SetIdentity.
//
// Example usage:
//
//	identity, err := core.GetIdentity(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(identity.UserID)
func GetIdentity(ctx context.Context) (*Identity, error) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	if !ok || identity == nil {
		return nil, ErrIdentityNotFound
	}
	return identity, nil
}

// HasIdentity checks if an identity exists in the context without retrieving it.
func HasIdentity(ctx context.Context) bool {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return ok && identity != nil
}
