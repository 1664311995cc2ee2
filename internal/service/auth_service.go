package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blogpanel/internal/auth"
	apperrors "blogpanel/internal/errors"
	"blogpanel/internal/model"
	"blogpanel/internal/repository"
)

const bcryptCost = 10

// dummyHash is compared against when the username is unknown so both
// failure paths spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)

// RegisterInput carries the registration form. First and last name are optional.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
}

// AuthService handles credential login and registration.
type AuthService interface {
	// Login returns a signed session token and its expiry. Unknown usernames
	// and wrong passwords both yield ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error)
	// Register creates the user. A taken username or email yields ErrUserAlreadyExists.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Login authenticates a user and returns a session token.
func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, fmt.Errorf("find user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", time.Time{}, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, apperrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token: %w", err)
	}
	return token, expiresAt, nil
}

// Register hashes the password and stores the user. Uniqueness is left to
// the store's unique indexes so concurrent registrations cannot both win.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
