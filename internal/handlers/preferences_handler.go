package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/damacus/trash-lens/internal/i18n"
	"github.com/damacus/trash-lens/internal/services"
	"github.com/labstack/echo/v4"
)

type PreferencesHandler struct {
	sessionService *services.SessionService
}

func NewPreferencesHandler(sessionService *services.SessionService) *PreferencesHandler {
	return &PreferencesHandler{sessionService: sessionService}
}

// Update changes the language and theme, then reloads the page the form was on
func (h *PreferencesHandler) Update(c echo.Context) error {
	sess, err := GetSession(c)
	if err != nil {
		return err
	}

	if lang := c.FormValue("lang"); lang != "" {
		if !i18n.Supported(lang) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unsupported language")
		}
		sess.Language = lang
	}
	if dark := c.FormValue("dark"); dark != "" {
		enabled, err := strconv.ParseBool(dark)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid dark mode value")
		}
		sess.DarkMode = enabled
	}

	if err := SaveSession(c, h.sessionService, sess); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save preferences")
	}
	return Redirect(c, returnPath(c.FormValue("return")))
}

// returnPath only allows local paths, anything else goes home
func returnPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" || u.IsAbs() || u.Host != "" || len(u.Path) == 0 || u.Path[0] != '/' {
		return "/"
	}
	if len(u.Path) > 1 && (u.Path[1] == '/' || u.Path[1] == '\\') {
		return "/"
	}
	return u.RequestURI()
}
