package handlers

import (
	"log"
	"net/http"

	"github.com/damacus/trash-lens/internal/services"
	"github.com/labstack/echo/v4"
)

type HistoryHandler struct {
	archive services.Archive
}

// NewHistoryHandler creates the Past Photos handler. archive may be nil.
func NewHistoryHandler(archive services.Archive) *HistoryHandler {
	return &HistoryHandler{archive: archive}
}

// ListPhotos renders the photos this session uploaded
func (h *HistoryHandler) ListPhotos(c echo.Context) error {
	sess, err := GetSession(c)
	if err != nil {
		return err
	}
	t := Messages(sess)

	data := pageData(c, sess, "history")
	if h.archive == nil {
		data["Error"] = t.ArchiveDisabled
		return c.Render(http.StatusOK, "history", data)
	}

	photos, err := h.archive.List(c.Request().Context(), sess.ID)
	if err != nil {
		log.Printf("HISTORY: list failed: session=%s err=%v", sess.ID, err)
		data["Error"] = t.HistoryFailed
		return c.Render(http.StatusOK, "history", data)
	}
	data["Photos"] = photos
	return c.Render(http.StatusOK, "history", data)
}
