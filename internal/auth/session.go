// Package auth turns authentication cookies into verified identities.
//
// Exactly one Strategy is active per process: either locally signed tokens
// or sessions issued by the identity backend. A cookie produced by one is
// meaningless to the other.
package auth

import (
	"context"
	"errors"

	"blogpanel/internal/identity"
	"blogpanel/internal/model"
)

var (
	// ErrNoSession means the request carried no authentication cookie.
	ErrNoSession = errors.New("no session")
	// ErrSessionExpired means the session was valid once but has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionInvalid means the session could not be verified.
	ErrSessionInvalid = errors.New("invalid session")
	// ErrSessionUnavailable means the session could not be checked because
	// the store or backend did not answer. The cookie may still be good.
	ErrSessionUnavailable = errors.New("session check unavailable")
)

// ShouldClear reports whether a verification failure warrants deleting the cookie.
func ShouldClear(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrSessionInvalid)
}

// anonymousName is what the navigation shows when nobody is signed in.
const anonymousName = "Login"

// Identity is the verified caller of a request.
type Identity struct {
	DisplayName string
	// User is set by the local strategy.
	User *model.User
	// Account is set by the backend strategy.
	Account *identity.Account
}

// Anonymous marks a request without a verified identity.
var Anonymous = Identity{DisplayName: anonymousName}

// Authenticated reports whether the identity belongs to a signed in user.
func (i Identity) Authenticated() bool {
	return i.User != nil || i.Account != nil
}

// Subject returns a stable identifier for logs.
func (i Identity) Subject() string {
	switch {
	case i.User != nil:
		return i.User.ID.String()
	case i.Account != nil:
		return i.Account.ID
	default:
		return ""
	}
}

// Strategy verifies the authentication cookie. The set of implementations
// is closed: LocalStrategy and BackendStrategy.
type Strategy interface {
	// Name is the configuration value that selects the strategy.
	Name() string
	// Cookies reads and writes the strategy's cookie.
	Cookies() *CookieHelper
	// Verify resolves the cookie value to an identity or returns one of the
	// ErrSession* errors.
	Verify(ctx context.Context, raw string) (Identity, error)

	sealed()
}

// Revoker is implemented by strategies that can end a session remotely.
type Revoker interface {
	Revoke(ctx context.Context, raw string) error
}
