package handlers

import (
	"errors"
	"net/http"

	"github.com/damacus/trash-lens/internal/i18n"
	"github.com/damacus/trash-lens/internal/services"
	"github.com/damacus/trash-lens/internal/utils"
	"github.com/labstack/echo/v4"
)

// errAlreadyNavigated guards the single navigation a workflow step may request
var errAlreadyNavigated = errors.New("navigation already requested")

// GetSession retrieves the session stored by the session middleware
func GetSession(c echo.Context) (*services.Session, error) {
	val := c.Get(utils.ContextKeySession)
	if val == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Session not available")
	}
	sess, ok := val.(*services.Session)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Session not available")
	}
	return sess, nil
}

// SaveSession writes the session back to its cookie. It must run before the
// response body is written.
func SaveSession(c echo.Context, sessionService *services.SessionService, sess *services.Session) error {
	value, err := sessionService.Encrypt(*sess)
	if err != nil {
		return err
	}
	c.SetCookie(utils.SessionCookie(value, utils.IsSecureRequest(c.Request())))
	return nil
}

// Messages returns the string table for the session's language
func Messages(sess *services.Session) i18n.Messages {
	return i18n.For(sess.Language)
}

// HTMXRedirect sets the HX-Redirect header and returns a 200 OK response.
// This is used for HTMX requests that should trigger a client-side redirect.
func HTMXRedirect(c echo.Context, url string) error {
	c.Response().Header().Set("HX-Redirect", url)
	return c.NoContent(http.StatusOK)
}

// Redirect sends htmx requests an HX-Redirect and everything else a 303
func Redirect(c echo.Context, url string) error {
	if utils.IsHTMX(c.Request()) {
		return HTMXRedirect(c, url)
	}
	return c.Redirect(http.StatusSeeOther, url)
}

// pendingNavigation records the route a workflow step asks for, so the handler
// can save the session before the redirect is written.
type pendingNavigation struct {
	route string
}

func (n *pendingNavigation) Navigate(route string) error {
	if n.route != "" {
		return errAlreadyNavigated
	}
	n.route = route
	return nil
}

func (n *pendingNavigation) requested() bool {
	return n.route != ""
}

// pageData is the data every full page needs from the layout
func pageData(c echo.Context, sess *services.Session, activeNav string) map[string]interface{} {
	csrf, _ := c.Get("csrf").(string)
	return map[string]interface{}{
		"ActiveNav": activeNav,
		"T":         Messages(sess),
		"Lang":      i18n.For(sess.Language).Lang,
		"Languages": i18n.Languages(),
		"DarkMode":  sess.DarkMode,
		"CSRFToken": csrf,
		"Path":      c.Request().URL.RequestURI(),
	}
}
