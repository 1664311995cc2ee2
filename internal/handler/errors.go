package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"blogpanel/internal/auth"
	apperrors "blogpanel/internal/errors"
	"blogpanel/internal/view"
)

const genericServerError = "Server Error"

type errorContent struct {
	Status   int
	Message  string
	Code     string
	Redirect string
}

// ErrorHandler renders every failed request with the error view, or as JSON
// for clients that accept it. Details of server errors are logged and never shown.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he := toHTTPError(c, err)
		ctx := c.Request().Context()
		if he.StatusCode >= http.StatusInternalServerError {
			logger.ErrorContext(ctx, "request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", he.StatusCode,
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(he.StatusCode); err != nil {
				logger.ErrorContext(ctx, "write error response", "error", err)
			}
			return
		}

		if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
			if err := c.JSON(he.StatusCode, he.ToErrorResponse()); err != nil {
				logger.ErrorContext(ctx, "write error response", "error", err)
			}
			return
		}

		var redirect string
		if he.StatusCode == http.StatusUnauthorized {
			redirect = c.Response().Header().Get(echo.HeaderLocation)
		}

		data := view.Page{
			Title:        "Error",
			Description:  view.DefaultDescription,
			User:         auth.Anonymous.DisplayName,
			CurrentRoute: "/error",
			Content: errorContent{
				Status:   he.StatusCode,
				Message:  he.Message,
				Code:     he.Code,
				Redirect: redirect,
			},
		}
		if err := c.Render(he.StatusCode, "error", data); err != nil {
			logger.ErrorContext(ctx, "render error view", "error", err)
			_ = c.String(he.StatusCode, he.Message)
		}
	}
}

func toHTTPError(c echo.Context, err error) *apperrors.HTTPError {
	var ee *echo.HTTPError
	if errors.As(err, &ee) {
		switch {
		case ee.Code == http.StatusNotFound && ee.Message == http.StatusText(http.StatusNotFound):
			return apperrors.NewHTTPError(http.StatusNotFound,
				fmt.Sprintf("Cannot find %s on the server", c.Request().URL.Path), apperrors.CodeNotFound)
		case ee.Code >= http.StatusInternalServerError:
			return apperrors.NewHTTPError(ee.Code, genericServerError, apperrors.CodeInternal).WithInternal(err)
		default:
			return apperrors.NewHTTPError(ee.Code, fmt.Sprint(ee.Message), "")
		}
	}
	return apperrors.MapErrorToHTTP(err)
}
