package provider

import (
	"context"

	"catalog-service/internal/auth"
)

// OAuthProvider defines the contract every external auth provider
// must implement. Implementations return identity facts only and
// must not perform user creation, linking, or session management.
type OAuthProvider interface {
	// Name returns the provider identifier ("google", "facebook").
	Name() string

	// ClientID is the public application id rendered into the login page.
	ClientID() string

	// Exchange trades the credential posted by the browser (an authorization
	// code or a short-lived access token) for a verified grant.
	Exchange(ctx context.Context, credential string) (*auth.Grant, error)

	// Profile fetches the user's profile with a grant returned by Exchange.
	Profile(ctx context.Context, grant *auth.Grant) (*auth.Identity, error)

	// Revoke invalidates the grant at the provider.
	Revoke(ctx context.Context, grant *auth.Grant) error
}
