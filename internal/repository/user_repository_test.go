package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blogpanel/internal/model"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &model.User{FirstName: "Ada", Email: "ada@example.com", Username: "ada", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	byName, err := repo.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.FirstName)

	_, err = repo.FindByUsername(ctx, "grace")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateKeys(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "a@example.com", Username: "a", PasswordHash: "x"}))

	tests := []struct {
		name string
		user *model.User
	}{
		{name: "same username", user: &model.User{Email: "b@example.com", Username: "a", PasswordHash: "x"}},
		{name: "same email", user: &model.User{Email: "a@example.com", Username: "b", PasswordHash: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		})
	}
}
