package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogpanel/internal/cache"
	apperrors "blogpanel/internal/errors"
	"blogpanel/internal/model"
	"blogpanel/internal/repository"
)

const (
	// PageSize is the number of posts on one listing page.
	PageSize = 10

	postCacheTTL = 5 * time.Minute
)

var searchDisallowed = regexp.MustCompile(`[^a-zA-Z0-9. ]`)

// SanitizeSearchTerm removes everything except letters, digits, periods and
// spaces so user input can never act as a pattern or query operator.
func SanitizeSearchTerm(term string) string {
	return searchDisallowed.ReplaceAllString(term, "")
}

// ParsePage turns the optional page query value into a 1-indexed page number.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Page is one page of the public listing.
type Page struct {
	Posts   []model.Post
	Current int
	// NextPage is nil on the last page.
	NextPage *int
}

// PostService exposes blog post operations.
type PostService interface {
	ListPage(ctx context.Context, page int) (*Page, error)
	ListAll(ctx context.Context) ([]model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	Search(ctx context.Context, term string) ([]model.Post, error)
	Create(ctx context.Context, title, body string) (*model.Post, error)
	Update(ctx context.Context, id, title, body string) (*model.Post, error)
	Delete(ctx context.Context, id string) error
}

type postService struct {
	repo  repository.PostRepository
	cache *cache.Client
	now   func() time.Time
}

// NewPostService builds a PostService with repository and cache.
func NewPostService(repo repository.PostRepository, cache *cache.Client) PostService {
	return &postService{repo: repo, cache: cache, now: time.Now}
}

func (s *postService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("post:%s", id.String())
}

// ListPage returns posts newest first, PageSize per page.
func (s *postService) ListPage(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	// Compare page numbers, not offsets, so huge pages cannot overflow.
	lastPage := (total + PageSize - 1) / PageSize
	result := &Page{Posts: []model.Post{}, Current: page}
	if int64(page) > lastPage {
		return result, nil
	}

	posts, err := s.repo.ListNewest(ctx, (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	result.Posts = posts
	if int64(page) < lastPage {
		next := page + 1
		result.NextPage = &next
	}
	return result, nil
}

func (s *postService) ListAll(ctx context.Context) ([]model.Post, error) {
	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Get retrieves a post by id with caching. Malformed ids are reported as not found.
func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrPostNotFound
	}

	if data, _ := s.cache.Get(ctx, s.cacheKey(postID)); data != nil {
		var cached model.Post
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	if payload, err := json.Marshal(post); err == nil {
		if err := s.cache.Set(ctx, s.cacheKey(postID), payload, postCacheTTL); err != nil {
			slog.DebugContext(ctx, "cache post", "post_id", postID.String(), "error", err)
		}
	}
	return post, nil
}

// Search sanitizes term and matches it against title or body. A term that
// is empty after sanitizing matches nothing.
func (s *postService) Search(ctx context.Context, term string) ([]model.Post, error) {
	clean := SanitizeSearchTerm(term)
	if clean == "" {
		return []model.Post{}, nil
	}
	posts, err := s.repo.Search(ctx, clean)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Create(ctx context.Context, title, body string) (*model.Post, error) {
	post := &model.Post{Title: title, Body: body}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Update changes title, body and the updated timestamp.
func (s *postService) Update(ctx context.Context, id, title, body string) (*model.Post, error) {
	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrPostNotFound
	}

	s.invalidate(ctx, postID)
	if err := s.repo.Update(ctx, postID, title, body, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	s.invalidate(ctx, postID)

	return s.Get(ctx, id)
}

// Delete removes the post, reporting ErrPostNotFound when it does not exist.
func (s *postService) Delete(ctx context.Context, id string) error {
	postID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.ErrPostNotFound
	}

	s.invalidate(ctx, postID)
	if err := s.repo.Delete(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	s.invalidate(ctx, postID)
	return nil
}

// invalidate drops the cached copy before and after every write. If both
// fail Redis was down for the whole write, and the stale entry can
// then live until postCacheTTL.
func (s *postService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		slog.WarnContext(ctx, "invalidate cached post", "post_id", id.String(), "error", err)
	}
}
