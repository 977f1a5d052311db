package core

// Claims is the payload carried by a session token.
type Claims struct {
	// Subject is the opaque user identifier. Required.
	Subject string `json:"sub"`

	// ScopeContext optionally binds the session to a tenant or organization.
	ScopeContext string `json:"scope_context,omitempty"`
}

// Validate reports whether the claims can be signed into a session token.
func (c Claims) Validate() error {
	if c.Subject == "" {
		return NewValidationError(ErrorCodeInvalidClaims, "subject is required", nil)
	}
	return nil
}

// Identity is the authenticated principal handed to downstream handlers.
type Identity struct {
	UserID       string `json:"userId"`
	ScopeContext string `json:"scopeContext,omitempty"`
}

// IdentityFromClaims maps verified claims to an Identity.
func IdentityFromClaims(c *Claims) *Identity {
	return &Identity{
		UserID:       c.Subject,
		ScopeContext: c.ScopeContext,
	}
}
