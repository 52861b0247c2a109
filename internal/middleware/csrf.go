package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	// CSRFCookieName holds the token echo issues on safe requests
	CSRFCookieName = "trash_csrf"
	// CSRFFormField carries the token on plain form posts that htmx did not send
	CSRFFormField = "_csrf"
)

// CSRF requires the token on every unsafe request: htmx sends it as a header,
// plain forms as a hidden field.
func CSRF() echo.MiddlewareFunc {
	return echoMiddleware.CSRFWithConfig(echoMiddleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:" + CSRFFormField,
		CookieName:     CSRFCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteStrictMode,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
	})
}
