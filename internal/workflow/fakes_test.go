package workflow

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/damacus/trash-lens/internal/models"
	"github.com/damacus/trash-lens/internal/services"
	"github.com/stretchr/testify/mock"
)

// mockClassifier is a testify mock for the upload path
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
	return args.Get(0).([]models.PhotoInfo), args.Error(1)
}

// recordingNavigator remembers every route it was sent to
type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
	err    error
}

func (n *recordingNavigator) Navigate(route string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
	return n.err
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

type reply struct {
	result *services.AnalysisResult
	err    error
}

type pendingCall struct {
	ctx       context.Context
	reference string
	replies   chan reply
}

func (c *pendingCall) succeed(result services.AnalysisResult) {
	c.replies <- reply{result: &result}
}

func (c *pendingCall) fail(err error) {
	c.replies <- reply{err: err}
}

// scriptedClassifier parks every Analyze call until the test answers it
type scriptedClassifier struct {
	started chan *pendingCall
}

func newScriptedClassifier() *scriptedClassifier {
	return &scriptedClassifier{started: make(chan *pendingCall, 16)}
}

func (s *scriptedClassifier) PostImage(_ context.Context, _ services.UploadRequest) (*services.UploadResult, error) {
	panic("unexpected test call")
}

func (s *scriptedClassifier) Analyze(ctx context.Context, reference string) (*services.AnalysisResult, error) {
	call := &pendingCall{ctx: ctx, reference: reference, replies: make(chan reply, 1)}
	s.started <- call
	select {
	case r := <-call.replies:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *scriptedClassifier) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case call := <-s.started:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected an analyze call")
	}
	return nil
}

// staticClassifier answers every Analyze call the same way
type staticClassifier struct {
	result services.AnalysisResult
	err    error
}

func (s *staticClassifier) PostImage(_ context.Context, _ services.UploadRequest) (*services.UploadResult, error) {
	panic("unexpected test call")
}

func (s *staticClassifier) Analyze(_ context.Context, _ string) (*services.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := s.result
	return &result, nil
}
