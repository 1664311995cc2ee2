package auth

import (
	"context"
	"fmt"
	"net/http"

	"blogpanel/internal/config"
	"blogpanel/internal/identity"
)

// SessionCookie is the cookie holding the identity backend's session secret.
const SessionCookie = "session"

// AccountResolver is the part of the identity client the strategy needs.
type AccountResolver interface {
	GetAccount(ctx context.Context, secret string) (*identity.Account, error)
	DeleteSession(ctx context.Context, secret string) error
}

// BackendStrategy treats the cookie as an opaque backend session secret and
// revalidates it against the backend on every request.
type BackendStrategy struct {
	backend AccountResolver
	cookies *CookieHelper
}

// NewBackendStrategy builds the backend session strategy.
func NewBackendStrategy(backend AccountResolver) *BackendStrategy {
	return &BackendStrategy{
		backend: backend,
		cookies: NewCookieHelper(CookieConfig{
			Name:     SessionCookie,
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		}),
	}
}

func (s *BackendStrategy) Name() string { return config.StrategyBackend }

func (s *BackendStrategy) Cookies() *CookieHelper { return s.cookies }

func (s *BackendStrategy) Verify(ctx context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Anonymous, ErrNoSession
	}

	account, err := s.backend.GetAccount(ctx, raw)
	if err != nil {
		if identity.IsUnauthorized(err) {
			return Anonymous, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
		}
		return Anonymous, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	name := account.Name
	if name == "" {
		name = account.Email
	}
	return Identity{DisplayName: name, Account: account}, nil
}

// Revoke deletes the session on the backend.
func (s *BackendStrategy) Revoke(ctx context.Context, raw string) error {
	return s.backend.DeleteSession(ctx, raw)
}

func (s *BackendStrategy) sealed() {}
