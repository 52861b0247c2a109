package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/damacus/trash-lens/internal/config"
	"github.com/damacus/trash-lens/internal/maps"
	"github.com/damacus/trash-lens/internal/services"
	"github.com/damacus/trash-lens/internal/workflow"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// fakeClassifier is an httptest stand-in for the classification service
type fakeClassifier struct {
	*httptest.Server

	uploads  atomic.Int32
	analyses atomic.Int32

	mu         sync.Mutex
	errorCodes []int
	filePaths  []string
	moeru      bool
	moenai     bool
}

func newFakeClassifier(t *testing.T) *fakeClassifier {
	t.Helper()
	f := &fakeClassifier{errorCodes: []int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/post_image", func(w http.ResponseWriter, r *http.Request) {
		f.uploads.Add(1)
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = io.Copy(io.Discard, file)
		_ = file.Close()

		f.mu.Lock()
		codes := f.errorCodes
		f.mu.Unlock()
		writeJSON(w, services.UploadResult{ErrorCodes: codes})
	})
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		f.analyses.Add(1)
		var req services.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.filePaths = append(f.filePaths, req.FilePath)
		result := services.AnalysisResult{Data: "iVBORw0KGgo=", ContainsMoeru: f.moeru, ContainsMoenai: f.moenai}
		f.mu.Unlock()
		writeJSON(w, result)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeClassifier) reject(codes ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorCodes = codes
}

func (f *fakeClassifier) detect(moeru, moenai bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moeru, f.moenai = moeru, moenai
}

func (f *fakeClassifier) analyzedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.filePaths...)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig() *config.Config {
	return &config.Config{
		Addr:            ":0",
		RecentCapacity:  workflow.DefaultRecentCapacity,
		ViewCapacity:    100,
		ViewTTL:         workflow.DefaultViewTTL,
		DefaultLanguage: "en",
		Map:             maps.Default(),
	}
}

// newTestServer builds the real server from the repository root, talking to fake
func newTestServer(t *testing.T, fake *fakeClassifier) *server {
	t.Helper()
	if _, err := os.Stat("views"); err != nil {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir("../.."))
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := newServer(ctx, testConfig(), services.NewHTTPClassifier(fake.URL, fake.Client()), nil)
	t.Cleanup(func() {
		cancel()
		s.views.CloseAll()
	})
	return s
}

var (
	csrfMeta = regexp.MustCompile(`name="csrf-token" content="([^"]+)"`)
	viewAttr = regexp.MustCompile(`data-view="([^"]+)"`)
)

// browser replays cookies between requests the way a real browser would
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	csrf    string
}

func newBrowser(t *testing.T, handler http.Handler) *browser {
	return &browser{t: t, handler: handler, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range b.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(b.cookies, cookie.Name)
			continue
		}
		b.cookies[cookie.Name] = cookie
	}
	if m := csrfMeta.FindStringSubmatch(rec.Body.String()); m != nil {
		b.csrf = m[1]
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) htmxPost(target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	require.NotEmpty(b.t, b.csrf, "load a page before posting")
	req := httptest.NewRequest(http.MethodPost, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", b.csrf)
	return b.do(req)
}

func (b *browser) formPost(target string, form url.Values) *httptest.ResponseRecorder {
	require.NotEmpty(b.t, b.csrf, "load a page before posting")
	form.Set("_csrf", b.csrf)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.do(req)
}
