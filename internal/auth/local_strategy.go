package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"blogpanel/internal/config"
	"blogpanel/internal/model"
	"blogpanel/internal/repository"
)

// TokenCookie is the cookie holding a locally signed session token.
const TokenCookie = "token"

// LocalStrategy verifies HS256 tokens issued after a credential login.
// There is no revocation list; expiry is the only invalidation.
type LocalStrategy struct {
	jwt     *JWTService
	users   repository.UserRepository
	cookies *CookieHelper
}

// NewLocalStrategy builds the local token strategy.
func NewLocalStrategy(jwtService *JWTService, users repository.UserRepository, secure bool) *LocalStrategy {
	return &LocalStrategy{
		jwt:   jwtService,
		users: users,
		cookies: NewCookieHelper(CookieConfig{
			Name:     TokenCookie,
			Path:     "/",
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		}),
	}
}

func (s *LocalStrategy) Name() string { return config.StrategyLocal }

func (s *LocalStrategy) Cookies() *CookieHelper { return s.cookies }

func (s *LocalStrategy) Verify(ctx context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Anonymous, ErrNoSession
	}

	claims, err := s.jwt.ValidateToken(raw)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Anonymous, ErrSessionExpired
		}
		return Anonymous, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return Anonymous, fmt.Errorf("%w: bad subject", ErrSessionInvalid)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Anonymous, fmt.Errorf("%w: user %s no longer exists", ErrSessionInvalid, userID)
		}
		return Anonymous, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	return Identity{DisplayName: displayName(user), User: user}, nil
}

func (s *LocalStrategy) sealed() {}

func displayName(user *model.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	return user.Username
}
