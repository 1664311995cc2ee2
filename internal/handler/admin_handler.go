package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"blogpanel/internal/auth"
	apperrors "blogpanel/internal/errors"
	"blogpanel/internal/model"
	"blogpanel/internal/service"
	"blogpanel/internal/view"
)

// AdminHandler serves credential login, registration and post management.
type AdminHandler struct {
	authService service.AuthService
	posts       service.PostService
	strategy    auth.Strategy
	logger      *slog.Logger
}

// NewAdminHandler creates a new admin handler. strategy owns the cookie
// written on login and cleared on logout.
func NewAdminHandler(authService service.AuthService, posts service.PostService, strategy auth.Strategy, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		posts:       posts,
		strategy:    strategy,
		logger:      logger,
	}
}

// LoginRequest is the credential login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// RegisterRequest is the registration form. Names are optional.
type RegisterRequest struct {
	FirstName string `form:"firstName"`
	LastName  string `form:"lastName"`
	Email     string `form:"email" validate:"required,email"`
	Username  string `form:"username" validate:"required"`
	Password  string `form:"password" validate:"required"`
}

// PostRequest is the add and edit post form.
type PostRequest struct {
	Title string `form:"title" validate:"required"`
	Body  string `form:"body" validate:"required"`
}

type dashboardContent struct {
	Posts []model.Post
}

func adminPage(id auth.Identity, title string, showLogout bool, content any) view.Page {
	return view.Page{
		Title:       title,
		Description: view.DefaultDescription,
		User:        id.DisplayName,
		SignedIn:    id.Authenticated(),
		ShowLogout:  showLogout,
		Content:     content,
	}
}

// LoginForm renders the credential login form.
func (h *AdminHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "admin/login", adminPage(auth.Anonymous, "Admin", false, nil))
}

// Login checks the credentials, sets the token cookie and redirects to the dashboard.
func (h *AdminHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation("Username and password are required")
	}

	token, expiresAt, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	h.strategy.Cookies().Set(c, token, expiresAt)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AdminHandler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "admin/register", adminPage(auth.Anonymous, "Register", false, nil))
}

// Register creates an administrator account and sends the user to the login page.
func (h *AdminHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation("Email, username and password are required")
	}

	_, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *AdminHandler) Dashboard(c echo.Context, id auth.Identity) error {
	posts, err := h.posts.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "admin/dashboard", adminPage(id, "Dashboard", true, dashboardContent{Posts: posts}))
}

func (h *AdminHandler) AddPostForm(c echo.Context, id auth.Identity) error {
	return c.Render(http.StatusOK, "admin/add-post", adminPage(id, "Add Post", true, nil))
}

func (h *AdminHandler) AddPost(c echo.Context, id auth.Identity) error {
	req, err := bindPost(c)
	if err != nil {
		return err
	}
	if _, err := h.posts.Create(c.Request().Context(), req.Title, req.Body); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// EditPostForm renders the edit form, or 404 when the post does not exist.
func (h *AdminHandler) EditPostForm(c echo.Context, id auth.Identity) error {
	post, err := h.posts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "admin/edit-post", adminPage(id, "Edit Post", true, postContent{Post: post}))
}

// EditPost saves the form and redirects to the post's public page.
func (h *AdminHandler) EditPost(c echo.Context, id auth.Identity) error {
	req, err := bindPost(c)
	if err != nil {
		return err
	}
	post, err := h.posts.Update(c.Request().Context(), c.Param("id"), req.Title, req.Body)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/post/"+post.ID.String())
}

func (h *AdminHandler) DeletePost(c echo.Context, id auth.Identity) error {
	if err := h.posts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout clears the session cookie, ends the backend session when there is
// one, and redirects to the dashboard.
func (h *AdminHandler) Logout(c echo.Context, id auth.Identity) error {
	cookies := h.strategy.Cookies()
	raw := cookies.Read(c)
	cookies.Clear(c)

	if revoker, ok := h.strategy.(auth.Revoker); ok && raw != "" {
		if err := revoker.Revoke(c.Request().Context(), raw); err != nil {
			h.logger.WarnContext(c.Request().Context(), "revoke session", "error", err)
		}
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

func (h *AdminHandler) LoginSuccess(c echo.Context, id auth.Identity) error {
	return c.Render(http.StatusOK, "admin/login-success", adminPage(id, "Signed in", true, nil))
}

func bindPost(c echo.Context) (*PostRequest, error) {
	var req PostRequest
	if err := c.Bind(&req); err != nil {
		return nil, apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return nil, apperrors.Validation("Title and content are required")
	}
	return &req, nil
}
