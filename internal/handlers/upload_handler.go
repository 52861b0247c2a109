package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/damacus/trash-lens/internal/services"
	"github.com/damacus/trash-lens/internal/utils"
	"github.com/damacus/trash-lens/internal/workflow"
	"github.com/labstack/echo/v4"
)

// RecentItem is one entry of the recent analyses list
type RecentItem struct {
	Name string
	URL  string
}

type UploadHandler struct {
	uploader       *workflow.Uploader
	sessionService *services.SessionService
	recentCapacity int
	timeout        time.Duration
}

func NewUploadHandler(uploader *workflow.Uploader, sessionService *services.SessionService, recentCapacity int, timeout time.Duration) *UploadHandler {
	return &UploadHandler{
		uploader:       uploader,
		sessionService: sessionService,
		recentCapacity: recentCapacity,
		timeout:        timeout,
	}
}

// UploadPage renders the upload form with the session's recent analyses
func (h *UploadHandler) UploadPage(c echo.Context) error {
	sess, err := GetSession(c)
	if err != nil {
		return err
	}

	data := pageData(c, sess, "upload")
	data["Recent"] = recentItems(workflow.NewRecentList(h.recentCapacity, sess.Recent))
	return c.Render(http.StatusOK, "upload", data)
}

// Upload hands the selected file to the Upload Orchestrator. On success the
// recent list is saved before the browser is sent to the result page.
func (h *UploadHandler) Upload(c echo.Context) error {
	sess, err := GetSession(c)
	if err != nil {
		return err
	}
	t := Messages(sess)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.renderStatus(c, sess, t.UploadNoFile, nil)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return h.renderStatus(c, sess, t.UploadNoFile, nil)
	}
	defer func() { _ = src.Close() }()

	req := services.UploadRequest{
		Name:        workflow.DisplayName(fileHeader.Filename),
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Data:        src,
		Size:        fileHeader.Size,
	}

	ctx := c.Request().Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	recent := workflow.NewRecentList(h.recentCapacity, sess.Recent)
	nav := &pendingNavigation{}
	_, err = h.uploader.Submit(ctx, sess.ID, req, recent, nav)

	var rejected *workflow.UploadRejectedError
	switch {
	case errors.Is(err, workflow.ErrNoFile):
		return h.renderStatus(c, sess, t.UploadNoFile, nil)
	case errors.As(err, &rejected):
		return h.renderStatus(c, sess, t.UploadRejected, rejected.Codes)
	case !nav.requested():
		return h.renderStatus(c, sess, t.UploadFailed, nil)
	}

	sess.Recent = recent.Items()
	if err := SaveSession(c, h.sessionService, sess); err != nil {
		log.Printf("UPLOAD: failed to save session: %v", err)
	}
	return Redirect(c, nav.route)
}

// renderStatus shows an upload problem: in place for htmx, on the full page otherwise
func (h *UploadHandler) renderStatus(c echo.Context, sess *services.Session, message string, codes []int) error {
	if utils.IsHTMX(c.Request()) {
		return c.Render(http.StatusOK, "upload_status", map[string]interface{}{
			"Error": message,
			"Codes": codes,
		})
	}

	data := pageData(c, sess, "upload")
	data["Recent"] = recentItems(workflow.NewRecentList(h.recentCapacity, sess.Recent))
	data["Error"] = message
	data["Codes"] = codes
	return c.Render(http.StatusUnprocessableEntity, "upload", data)
}

func recentItems(recent *workflow.RecentList) []RecentItem {
	names := recent.Items()
	items := make([]RecentItem, 0, len(names))
	for _, name := range names {
		items = append(items, RecentItem{Name: name, URL: workflow.ResultURL(name)})
	}
	return items
}
