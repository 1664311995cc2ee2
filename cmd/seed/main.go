package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"blogpanel/internal/auth"
	"blogpanel/internal/config"
	"blogpanel/internal/db"
	apperrors "blogpanel/internal/errors"
	"blogpanel/internal/logging"
	"blogpanel/internal/model"
	"blogpanel/internal/repository"
	"blogpanel/internal/service"
)

//go:embed posts.json
var samplePosts []byte

// SeedPost is one entry of the seed data set.
type SeedPost struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.AppEnv)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	logger.Info("database ready", "driver", cfg.DBDriver)

	posts, err := loadPosts(ctx, os.Getenv("SEED_POSTS_URL"), cfg.UpstreamTimeout)
	if err != nil {
		return err
	}

	created, skipped, err := seedPosts(ctx, repository.NewPostRepository(gormDB), posts)
	if err != nil {
		return err
	}
	logger.Info("posts seeded", "created", created, "skipped", skipped)

	username := os.Getenv("SEED_ADMIN_USERNAME")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	authService := service.NewAuthService(repository.NewUserRepository(gormDB), auth.NewJWTService(cfg.JWTSecret))
	_, err = authService.Register(ctx, service.RegisterInput{
		FirstName: "Admin",
		Email:     envOr("SEED_ADMIN_EMAIL", username+"@localhost"),
		Username:  username,
		Password:  password,
	})
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		logger.Info("admin user already exists", "username", username)
	case err != nil:
		return fmt.Errorf("create admin user: %w", err)
	default:
		logger.Info("admin user created", "username", username)
	}
	return nil
}

// loadPosts reads the embedded sample posts, or fetches them from url when set.
func loadPosts(ctx context.Context, url string, timeout time.Duration) ([]SeedPost, error) {
	data := samplePosts
	if url != "" {
		fetched, err := fetch(ctx, url, timeout)
		if err != nil {
			return nil, err
		}
		data = fetched
	}

	var posts []SeedPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return posts, nil
}

func fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seed posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// seedPosts inserts posts whose title is not stored yet, so running it twice is harmless.
func seedPosts(ctx context.Context, repo repository.PostRepository, posts []SeedPost) (created int, skipped int, err error) {
	for _, p := range posts {
		if p.Title == "" || p.Body == "" {
			skipped++
			continue
		}
		exists, err := repo.ExistsByTitle(ctx, p.Title)
		if err != nil {
			return created, skipped, fmt.Errorf("error checking post %q: %w", p.Title, err)
		}
		if exists {
			skipped++
			continue
		}
		if err := repo.Create(ctx, &model.Post{Title: p.Title, Body: p.Body}); err != nil {
			return created, skipped, fmt.Errorf("error creating post %q: %w", p.Title, err)
		}
		created++
	}
	return created, skipped, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
