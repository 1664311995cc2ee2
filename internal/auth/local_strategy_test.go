package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blogpanel/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func TestLocalStrategy_Verify(t *testing.T) {
	jwtService := NewJWTService("test-secret")
	user := &model.User{ID: uuid.New(), FirstName: "Ada", Username: "ada"}
	goodToken, _, err := jwtService.GenerateToken(user.ID)
	require.NoError(t, err)
	ghostToken, _, err := jwtService.GenerateToken(uuid.New())
	require.NoError(t, err)
	brokenToken, _, err := jwtService.GenerateToken(uuid.New())
	require.NoError(t, err)

	expiredSvc := NewJWTService("test-secret")
	expiredSvc.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	expiredToken, _, err := expiredSvc.GenerateToken(user.ID)
	require.NoError(t, err)

	tests := []struct {
		name      string
		raw       string
		setupMock func(*MockUserRepository)
		wantErr   error
		wantClear bool
		wantName  string
	}{
		{
			name:    "absent cookie",
			raw:     "",
			wantErr: ErrNoSession,
		},
		{
			name: "valid token",
			raw:  goodToken,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, user.ID).Return(user, nil)
			},
			wantName: "Ada",
		},
		{
			name:      "expired token",
			raw:       expiredToken,
			wantErr:   ErrSessionExpired,
			wantClear: true,
		},
		{
			name:      "tampered token",
			raw:       goodToken + "x",
			wantErr:   ErrSessionInvalid,
			wantClear: true,
		},
		{
			name: "user deleted",
			raw:  ghostToken,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr:   ErrSessionInvalid,
			wantClear: true,
		},
		{
			name: "store unavailable",
			raw:  brokenToken,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
			},
			wantErr: ErrSessionUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}
			strategy := NewLocalStrategy(jwtService, repo, false)

			id, err := strategy.Verify(context.Background(), tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantClear, ShouldClear(err))
				assert.False(t, id.Authenticated())
				assert.Equal(t, Anonymous, id)
			} else {
				require.NoError(t, err)
				assert.True(t, id.Authenticated())
				assert.Equal(t, tt.wantName, id.DisplayName)
				assert.Equal(t, user.ID.String(), id.Subject())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLocalStrategy_CookieName(t *testing.T) {
	strategy := NewLocalStrategy(NewJWTService("s"), new(MockUserRepository), false)
	assert.Equal(t, "token", strategy.Cookies().Name())
	assert.Equal(t, "local", strategy.Name())
}
