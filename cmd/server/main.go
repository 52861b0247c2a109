package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damacus/trash-lens/internal/config"
	"github.com/damacus/trash-lens/internal/handlers"
	customMiddleware "github.com/damacus/trash-lens/internal/middleware"
	"github.com/damacus/trash-lens/internal/renderer"
	"github.com/damacus/trash-lens/internal/services"
	"github.com/damacus/trash-lens/internal/workflow"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// server is the echo instance plus the state that must be closed on shutdown
type server struct {
	*echo.Echo
	views *workflow.Views
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("CONFIG: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	classifier := services.NewHTTPClassifier(cfg.APIURL, nil)
	log.Printf("Classifier at %s", classifier.BaseURL())

	s := newServer(ctx, cfg, classifier, newArchive(ctx, cfg.Archive))

	go func() {
		if err := s.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.views.CloseAll()
	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}

// newArchive connects the optional photo archive. Any failure disables it.
func newArchive(ctx context.Context, cfg services.ArchiveConfig) services.Archive {
	if !cfg.Enabled() {
		log.Println("ARCHIVE_ENDPOINT not set, Past Photos is disabled")
		return nil
	}

	client, err := services.NewMinioClient(cfg)
	if err != nil {
		log.Printf("ARCHIVE: connect to %s failed, Past Photos is disabled: %v", cfg.Endpoint, err)
		return nil
	}

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	archive, err := services.NewMinioArchive(setupCtx, client, cfg.Bucket, cfg.Region)
	if err != nil {
		log.Printf("ARCHIVE: bucket %s unavailable, Past Photos is disabled: %v", cfg.Bucket, err)
		return nil
	}
	return archive
}

func newServer(ctx context.Context, cfg *config.Config, classifier services.Classifier, archive services.Archive) *server {
	e := echo.New()

	// Services
	sessionService := services.NewSessionService()
	views := workflow.NewViews(cfg.ViewCapacity, cfg.ViewTTL)
	uploader := workflow.NewUploader(classifier, archive)

	uploadHandler := handlers.NewUploadHandler(uploader, sessionService, cfg.RecentCapacity, cfg.UploadTimeout)
	resultHandler := handlers.NewResultHandler(ctx, classifier, views, cfg.Map, cfg.AnalyzeTimeout)
	historyHandler := handlers.NewHistoryHandler(archive)
	preferencesHandler := handlers.NewPreferencesHandler(sessionService)

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("REQUEST: uri: %v, status: %v, request_id: %v, latency: %v\n", v.URI, v.Status, v.RequestID, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(customMiddleware.RequestID())
	e.Use(customMiddleware.SecurityHeaders())
	e.Use(customMiddleware.CSRF())
	// Every page needs a session; the middleware skips /health itself
	e.Use(customMiddleware.SessionMiddleware(sessionService, cfg.DefaultLanguage))

	// Template Renderer
	e.Renderer = renderer.New()

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.Static("/static", "static")

	// Upload
	e.GET(workflow.UploadPath, uploadHandler.UploadPage)
	e.POST("/upload", uploadHandler.Upload)

	// Result
	e.GET(workflow.ResultPath, resultHandler.ResultPage)
	e.GET("/result/:view/panel", resultHandler.Panel)
	e.GET("/result/:view/events", resultHandler.Events)
	e.POST("/result/:view/redo", resultHandler.Redo)
	e.POST("/result/:view/next", resultHandler.Next)

	e.GET("/history", historyHandler.ListPhotos)
	e.POST("/preferences", preferencesHandler.Update)

	return &server{Echo: e, views: views}
}
