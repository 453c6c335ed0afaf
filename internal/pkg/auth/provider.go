package auth

import "context"

// ProviderIdentity is the profile an external identity provider vouches for
type ProviderIdentity struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// IdentityProvider verifies third-party sign-in tokens (e.g. Google ID
// tokens) and returns the identity they assert. Implementations must reject
// expired or tampered tokens.
type IdentityProvider interface {
	Verify(ctx context.Context, providerToken string) (*ProviderIdentity, error)
}
