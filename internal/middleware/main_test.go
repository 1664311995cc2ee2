package middleware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"blogpanel/internal/auth"
	"blogpanel/internal/db"
	"blogpanel/internal/model"
	"blogpanel/internal/repository"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newLocalStrategy returns a local strategy backed by an in-memory store that
// holds one user, plus a valid token for that user.
func newLocalStrategy(t *testing.T) (*auth.LocalStrategy, *auth.JWTService, *model.User) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := db.Open("sqlite", fmt.Sprintf("file:mw_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	users := repository.NewUserRepository(gormDB)
	user := &model.User{FirstName: "Ada", Email: "ada@example.com", Username: "ada", PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), user))

	jwtService := auth.NewJWTService("test-secret")
	return auth.NewLocalStrategy(jwtService, users, false), jwtService, user
}

func newContext(method, target string, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func clearedCookie(rec *httptest.ResponseRecorder, name string) bool {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name && ck.MaxAge < 0 {
			return true
		}
	}
	return false
}
