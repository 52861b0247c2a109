package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/damacus/trash-lens/internal/models"
	"github.com/damacus/trash-lens/internal/services"
	"github.com/damacus/trash-lens/internal/utils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingRenderer remembers the last template rendered and its data
type recordingRenderer struct {
	mu   sync.Mutex
	name string
	data interface{}
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.name, r.data = name, data
	_, err := io.WriteString(w, name)
	return err
}

func (r *recordingRenderer) last() (string, map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, _ := r.data.(map[string]interface{})
	return r.name, data
}

func (r *recordingRenderer) lastPanel(t *testing.T) PanelView {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if panel, ok := r.data.(PanelView); ok {
		return panel
	}
	data, _ := r.data.(map[string]interface{})
	panel, ok := data["Panel"].(PanelView)
	require.True(t, ok, "no panel rendered")
	return panel
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) PostImage(ctx context.Context, req services.UploadRequest) (*services.UploadResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*services.UploadResult)
	return result, args.Error(1)
}

func (m *mockClassifier) Analyze(ctx context.Context, reference string) (*services.AnalysisResult, error) {
	args := m.Called(ctx, reference)
	result, _ := args.Get(0).(*services.AnalysisResult)
	return result, args.Error(1)
}

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) Store(ctx context.Context, sessionID, name string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, sessionID, name, reader, size, contentType)
	return args.Error(0)
}

func (m *mockArchive) List(ctx context.Context, sessionID string) ([]models.PhotoInfo, error) {
	args := m.Called(ctx, sessionID)
	photos, _ := args.Get(0).([]models.PhotoInfo)
	return photos, args.Error(1)
}

// newSessionContext builds a context as the session middleware would leave it
func newSessionContext(e *echo.Echo, req *http.Request, sess *services.Session) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(utils.ContextKeySession, sess)
	return c, rec
}

// withSession is a stand-in for the session middleware in routed tests
func withSession(sess *services.Session) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(utils.ContextKeySession, sess)
			return next(c)
		}
	}
}

func multipartUpload(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == utils.CookieName {
			return cookie
		}
	}
	return nil
}
