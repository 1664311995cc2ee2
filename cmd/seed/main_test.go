package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpanel/internal/db"
	"blogpanel/internal/repository"
)

func TestLoadPosts_Embedded(t *testing.T) {
	posts, err := loadPosts(context.Background(), "", time.Second)
	require.NoError(t, err)
	assert.Len(t, posts, 10)
	for _, p := range posts {
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Body)
	}
}

func TestLoadPosts_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"title":"Remote","body":"fetched"}]`))
	}))
	defer srv.Close()

	posts, err := loadPosts(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Remote", posts[0].Title)
}

func TestLoadPosts_RemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := loadPosts(context.Background(), srv.URL, time.Second)
	assert.Error(t, err)
}

func TestSeedPosts_Idempotent(t *testing.T) {
	gormDB, err := db.Open("sqlite", "file:seed_idempotent?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(gormDB))

	repo := repository.NewPostRepository(gormDB)
	ctx := context.Background()
	posts := []SeedPost{{Title: "One", Body: "1"}, {Title: "Two", Body: "2"}, {Title: "", Body: "no title"}}

	created, skipped, err := seedPosts(ctx, repo, posts)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 1, skipped)

	created, skipped, err = seedPosts(ctx, repo, posts)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 3, skipped)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
