// internal/app/system/identity/identity.go
package identity

import (
	"context"
	"errors"
)

// Sentinel errors returned by Provider implementations.
var (
	// ErrEmailInUse is returned by CreateAccount when an account with the
	// given email already exists.
	ErrEmailInUse = errors.New("identity: email already in use")

	// ErrInvalidCredentials is returned by SignIn when the email is unknown
	// or the password does not match.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// Provider is the authentication backend: it owns account credentials and
// issues stable auth IDs. The rest of the application treats auth IDs as
// opaque strings.
type Provider interface {
	// CreateAccount registers a new email/password account and returns its
	// auth ID. Returns ErrEmailInUse if the email is already registered.
	CreateAccount(ctx context.Context, email, password string) (authID string, err error)

	// SignIn verifies the email/password pair and returns the account's
	// auth ID, or ErrInvalidCredentials.
	SignIn(ctx context.Context, email, password string) (authID string, err error)

	// MethodsForEmail reports the sign-in methods registered for an email.
	// An empty slice means no account exists.
	MethodsForEmail(ctx context.Context, email string) ([]string, error)
}
