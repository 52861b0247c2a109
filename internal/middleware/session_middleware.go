package middleware

import (
	"log"

	"github.com/damacus/trash-lens/internal/services"
	"github.com/damacus/trash-lens/internal/utils"
	"github.com/labstack/echo/v4"
)

// SessionMiddleware loads the session cookie, or starts a new session when it
// is missing or unreadable, and stores it in the context for handlers to use.
func SessionMiddleware(sessionService *services.SessionService, defaultLanguage string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/health" {
				return next(c)
			}

			var sess *services.Session
			if cookie, err := c.Cookie(utils.CookieName); err == nil {
				if sess, err = sessionService.Decrypt(cookie.Value); err != nil {
					log.Printf("SESSION: discarding unreadable cookie: %v", err)
				}
			}

			if sess == nil {
				sess = services.NewSession(defaultLanguage)
				// Written now so the ID is stable for everything this page mounts.
				value, err := sessionService.Encrypt(*sess)
				if err != nil {
					return err
				}
				c.SetCookie(utils.SessionCookie(value, utils.IsSecureRequest(c.Request())))
			}

			c.Set(utils.ContextKeySession, sess)
			return next(c)
		}
	}
}
