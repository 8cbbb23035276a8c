package auth

import "errors"

var (
	// ErrExternalAuth means the provider rejected or could not confirm the
	// credential presented by the browser.
	ErrExternalAuth = errors.New("auth: external authentication failed")

	// ErrTokenInfo means the provider's token introspection reported an error.
	ErrTokenInfo = errors.New("auth: token info error")

	ErrRevoke = errors.New("auth: token revocation failed")
)

// Rejection is an external auth failure with a message safe to show the client.
type Rejection struct {
	Kind   error
	Reason string
}

func (r *Rejection) Error() string {
	return r.Kind.Error() + ": " + r.Reason
}

func (r *Rejection) Unwrap() error {
	return r.Kind
}

func Reject(kind error, reason string) error {
	return &Rejection{Kind: kind, Reason: reason}
}
