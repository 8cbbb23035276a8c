package auth

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider       string // "google" or "facebook"
	ProviderUserID string // provider-scoped unique user identifier
	Email          string
	Name           string
	Picture        string
}

// Grant is what a provider hands back after a successful token exchange:
// an access token usable against its APIs and the subject it was issued for.
type Grant struct {
	AccessToken string
	Subject     string
}
