package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"blogpanel/internal/view"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	renderer, err := view.New()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(discard)
	return e
}

func serve(e *echo.Echo, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
