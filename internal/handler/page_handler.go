package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogpanel/internal/auth"
	"blogpanel/internal/model"
	"blogpanel/internal/service"
	"blogpanel/internal/view"
)

// PageHandler serves the public pages. It never rejects anonymous callers.
type PageHandler struct {
	posts service.PostService
}

// NewPageHandler creates a new page handler.
func NewPageHandler(posts service.PostService) *PageHandler {
	return &PageHandler{posts: posts}
}

type listingContent struct {
	Posts    []model.Post
	Current  int
	NextPage *int
}

type postContent struct {
	Post *model.Post
}

type searchContent struct {
	Posts      []model.Post
	SearchTerm string
}

func publicPage(id auth.Identity, title, route string, content any) view.Page {
	return view.Page{
		Title:        title,
		Description:  view.DefaultDescription,
		User:         id.DisplayName,
		SignedIn:     id.Authenticated(),
		CurrentRoute: route,
		Content:      content,
	}
}

// Home renders one page of posts, newest first.
func (h *PageHandler) Home(c echo.Context, id auth.Identity) error {
	page, err := h.posts.ListPage(c.Request().Context(), service.ParsePage(c.QueryParam("page")))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "index", publicPage(id, "Blog", "/", listingContent{
		Posts:    page.Posts,
		Current:  page.Current,
		NextPage: page.NextPage,
	}))
}

// Post renders a single post or 404.
func (h *PageHandler) Post(c echo.Context, id auth.Identity) error {
	postID := c.Param("id")
	post, err := h.posts.Get(c.Request().Context(), postID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "post", publicPage(id, "Post - "+post.Title, "/post/"+postID, postContent{Post: post}))
}

// Search renders posts whose title or body contains the sanitized term.
func (h *PageHandler) Search(c echo.Context, id auth.Identity) error {
	term := c.FormValue("searchTerm")
	posts, err := h.posts.Search(c.Request().Context(), term)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "search", publicPage(id, "Search", "/search", searchContent{
		Posts:      posts,
		SearchTerm: service.SanitizeSearchTerm(term),
	}))
}

func (h *PageHandler) Contact(c echo.Context, id auth.Identity) error {
	return c.Render(http.StatusOK, "contact", publicPage(id, "Contact Me", "/contact", nil))
}
