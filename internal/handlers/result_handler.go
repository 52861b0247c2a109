package handlers

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/damacus/trash-lens/internal/i18n"
	"github.com/damacus/trash-lens/internal/maps"
	"github.com/damacus/trash-lens/internal/models"
	"github.com/damacus/trash-lens/internal/services"
	"github.com/damacus/trash-lens/internal/workflow"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	moeruPanelImage  = "/static/image/moeru.jpeg"
	moenaiPanelImage = "/static/image/moenai.jpg"

	eventsWriteWait  = 10 * time.Second
	eventsPongWait   = 60 * time.Second
	eventsPingPeriod = 54 * time.Second
)

type ResultHandler struct {
	ctx        context.Context
	classifier services.Classifier
	views      *workflow.Views
	mapConfig  maps.Config
	timeout    time.Duration
	upgrader   websocket.Upgrader
}

// NewResultHandler creates the result page handler. ctx outlives every
// request and bounds the analyses the page starts.
func NewResultHandler(ctx context.Context, classifier services.Classifier, views *workflow.Views, mapConfig maps.Config, timeout time.Duration) *ResultHandler {
	return &ResultHandler{
		ctx:        ctx,
		classifier: classifier,
		views:      views,
		mapConfig:  mapConfig,
		timeout:    timeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ResultPage mounts a new analysis view for the reference in the query string
func (h *ResultHandler) ResultPage(c echo.Context) error {
	sess, err := GetSession(c)
	if err != nil {
		return err
	}
	t := Messages(sess)

	reference := workflow.RecoverReference(c.QueryString())
	parent := services.WithRequestID(h.ctx, services.RequestIDFrom(c.Request().Context()))
	analysis := workflow.NewAnalysis(parent, h.classifier, reference, workflow.Options{
		Messages: t,
		Timeout:  h.timeout,
	})
	viewID := h.views.Add(sess.ID, analysis)
	analysis.Mount()

	data := pageData(c, sess, "result")
	data["Panel"] = newPanelView(viewID, analysis.Snapshot(), t)
	data["Map"] = h.mapConfig
	data["MapEnabled"] = h.mapConfig.Enabled()
	data["MapPoints"] = h.mapConfig.Points()
	return c.Render(http.StatusOK, "result", data)
}

// Panel renders the current state of a view, polled by htmx while analyzing
func (h *ResultHandler) Panel(c echo.Context) error {
	sess, analysis, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "analysis_panel", newPanelView(c.Param("view"), analysis.Snapshot(), Messages(sess)))
}

// Redo analyzes the view's photo again
func (h *ResultHandler) Redo(c echo.Context) error {
	sess, analysis, err := h.lookup(c)
	if err != nil {
		return err
	}
	analysis.Redo()
	return c.Render(http.StatusOK, "analysis_panel", newPanelView(c.Param("view"), analysis.Snapshot(), Messages(sess)))
}

// Next discards the view and returns to the upload page
func (h *ResultHandler) Next(c echo.Context) error {
	sess, err := GetSession(c)
	if err != nil {
		return err
	}

	analysis, ok := h.views.Get(sess.ID, c.Param("view"))
	if !ok {
		return Redirect(c, workflow.UploadPath)
	}
	h.views.Drop(sess.ID, c.Param("view"))

	nav := &pendingNavigation{}
	if err := analysis.Next(nav); err != nil {
		return err
	}
	return Redirect(c, nav.route)
}

// Events streams snapshots of a view over a websocket. Every message carries
// a Version; only increasing versions are sent.
func (h *ResultHandler) Events(c echo.Context) error {
	_, analysis, err := h.lookup(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already answered the request.
		log.Printf("EVENTS: upgrade failed: %v", err)
		return nil
	}
	defer func() { _ = conn.Close() }()

	updates := make(chan workflow.Snapshot, 1)
	unsubscribe := analysis.Subscribe(func(s workflow.Snapshot) {
		offerLatest(updates, s)
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("EVENTS: read failed: %v", err)
				}
				return
			}
		}
	}()

	var sent uint64
	send := func(s workflow.Snapshot) error {
		if s.Version <= sent {
			return nil
		}
		sent = s.Version
		_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
		return conn.WriteJSON(s)
	}

	if err := send(analysis.Snapshot()); err != nil {
		return nil
	}

	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil
		case <-h.ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(eventsWriteWait))
			return nil
		case s := <-updates:
			if err := send(s); err != nil {
				log.Printf("EVENTS: write failed: %v", err)
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (h *ResultHandler) lookup(c echo.Context) (*services.Session, *workflow.Analysis, error) {
	sess, err := GetSession(c)
	if err != nil {
		return nil, nil, err
	}
	analysis, ok := h.views.Get(sess.ID, c.Param("view"))
	if !ok {
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, "Result view expired")
	}
	return sess, analysis, nil
}

// offerLatest leaves the newest snapshot in a one-slot channel without blocking
func offerLatest(ch chan workflow.Snapshot, s workflow.Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case old := <-ch:
			if old.Version > s.Version {
				s = old
			}
		default:
		}
	}
}

// PanelView is what the analysis panel template renders
type PanelView struct {
	ViewID   string
	Snapshot workflow.Snapshot
	Image    template.URL
	Moeru    models.Panel
	Moenai   models.Panel
	Busy     bool
	Failed   bool
	T        i18n.Messages
}

func newPanelView(viewID string, snap workflow.Snapshot, t i18n.Messages) PanelView {
	return PanelView{
		ViewID:   viewID,
		Snapshot: snap,
		Image:    models.ImageSource(snap.ImageData),
		Moeru:    models.NewPanel("moeru", t.Moeru, moeruPanelImage, models.MoeruStyle, snap.ContainsMoeru, t.Detection, t.NotDetection),
		Moenai:   models.NewPanel("moenai", t.Moenai, moenaiPanelImage, models.MoenaiStyle, snap.ContainsMoenai, t.Detection, t.NotDetection),
		Busy:     snap.InFlight > 0,
		Failed:   snap.State == workflow.StateFailed,
		T:        t,
	}
}
