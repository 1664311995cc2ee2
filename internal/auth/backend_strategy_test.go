package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpanel/internal/identity"
)

type fakeBackend struct {
	account   *identity.Account
	err       error
	calls     int
	deleted   []string
	deleteErr error
}

func (f *fakeBackend) GetAccount(ctx context.Context, secret string) (*identity.Account, error) {
	f.calls++
	return f.account, f.err
}

func (f *fakeBackend) DeleteSession(ctx context.Context, secret string) error {
	f.deleted = append(f.deleted, secret)
	return f.deleteErr
}

func TestBackendStrategy_Verify(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		backend   *fakeBackend
		wantErr   error
		wantClear bool
		wantName  string
	}{
		{
			name:    "absent cookie",
			backend: &fakeBackend{},
			wantErr: ErrNoSession,
		},
		{
			name:     "valid session",
			raw:      "secret",
			backend:  &fakeBackend{account: &identity.Account{ID: "u1", Name: "Ada"}},
			wantName: "Ada",
		},
		{
			name:     "account without name",
			raw:      "secret",
			backend:  &fakeBackend{account: &identity.Account{ID: "u1", Email: "ada@example.com"}},
			wantName: "ada@example.com",
		},
		{
			name:      "invalid session",
			raw:       "stale",
			backend:   &fakeBackend{err: &identity.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid session"}},
			wantErr:   ErrSessionInvalid,
			wantClear: true,
		},
		{
			name:    "backend unreachable",
			raw:     "secret",
			backend: &fakeBackend{err: errors.New("dial tcp: connection refused")},
			wantErr: ErrSessionUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := NewBackendStrategy(tt.backend)
			id, err := strategy.Verify(context.Background(), tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantClear, ShouldClear(err))
				assert.Equal(t, Anonymous, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, id.DisplayName)
			assert.Equal(t, "u1", id.Subject())
		})
	}
}

func TestBackendStrategy_RevalidatesEveryCall(t *testing.T) {
	backend := &fakeBackend{account: &identity.Account{ID: "u1", Name: "Ada"}}
	strategy := NewBackendStrategy(backend)

	for i := 0; i < 3; i++ {
		_, err := strategy.Verify(context.Background(), "secret")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, backend.calls)
}

func TestBackendStrategy_Revoke(t *testing.T) {
	backend := &fakeBackend{}
	var strategy Strategy = NewBackendStrategy(backend)

	revoker, ok := strategy.(Revoker)
	require.True(t, ok)
	require.NoError(t, revoker.Revoke(context.Background(), "secret"))
	assert.Equal(t, []string{"secret"}, backend.deleted)
	assert.Equal(t, "session", strategy.Cookies().Name())
}
