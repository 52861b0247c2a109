package workflow

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/damacus/trash-lens/internal/i18n"
	"github.com/damacus/trash-lens/internal/models"
	"github.com/damacus/trash-lens/internal/services"
)

// ErrAnalysisFailed is reported when the classifier returned no result
var ErrAnalysisFailed = errors.New("analysis failed")

// State is where an Analysis is in its lifecycle
type State int

const (
	StateIdle State = iota
	StateAnalyzing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is a consistent copy of an Analysis for rendering
type Snapshot struct {
	Reference string `json:"reference"`
	State     State  `json:"-"`
	StateName string `json:"state"`
	// Version grows with every change; consumers drop anything older than what they have
	Version uint64 `json:"version"`
	// Generation is the call whose settlement produced the current result
	Generation uint64 `json:"generation"`
	Issued     uint64 `json:"issued"`
	InFlight   int    `json:"in_flight"`

	ImageData       string                  `json:"image_data,omitempty"`
	ContainsMoeru   bool                    `json:"contains_moeru"`
	ContainsMoenai  bool                    `json:"contains_moenai"`
	DetectedObjects []models.DetectedObject `json:"detected_objects"`
	Status          string                  `json:"status"`
	LastError       string                  `json:"last_error,omitempty"`
}

func (s Snapshot) clone() Snapshot {
	s.DetectedObjects = append([]models.DetectedObject{}, s.DetectedObjects...)
	return s
}

// Options are injected by the page that owns the Analysis
type Options struct {
	Messages i18n.Messages
	// Timeout bounds one classifier call, zero means no limit
	Timeout time.Duration
}

// Analysis runs and re-runs the classification of one uploaded photo.
//
// Calls are fire-and-forget: each settles on its own goroutine and results are
// applied in the order they settle, so the last response to arrive wins even
// when it was sent first. Close cancels everything still in flight and drops
// any late settlement.
type Analysis struct {
	classifier services.Classifier
	reference  string
	opts       Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	mounted      bool
	closed       bool
	issued       uint64
	inFlight     int
	snap         Snapshot
	listeners    map[int]func(Snapshot)
	nextListener int
}

// NewAnalysis creates an idle Analysis for reference. parent bounds every call.
func NewAnalysis(parent context.Context, classifier services.Classifier, reference string, opts Options) *Analysis {
	if opts.Messages.Lang == "" {
		opts.Messages = i18n.For(i18n.DefaultLanguage)
	}
	ctx, cancel := context.WithCancel(parent)
	a := &Analysis{
		classifier: classifier,
		reference:  reference,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		listeners:  make(map[int]func(Snapshot)),
	}
	a.snap = Snapshot{
		Reference:       reference,
		State:           StateIdle,
		StateName:       StateIdle.String(),
		DetectedObjects: []models.DetectedObject{},
		Status:          reference,
	}
	return a
}

// Reference is the uploaded name this Analysis classifies
func (a *Analysis) Reference() string {
	return a.reference
}

// Mount starts the first analysis. Only the first call does anything; it
// reports whether a call was issued.
func (a *Analysis) Mount() bool {
	a.mu.Lock()
	if a.mounted || a.closed {
		a.mu.Unlock()
		return false
	}
	a.mounted = true

	if a.reference == "" {
		a.snap.Status = a.opts.Messages.StatusNoImage
		snap := a.changedLocked()
		a.mu.Unlock()
		a.notify(snap)
		return false
	}

	gen, snap := a.beginLocked()
	a.mu.Unlock()

	a.notify(snap)
	a.run(gen)
	return true
}

// Redo analyzes the same reference again and returns the generation issued,
// or 0 when the Analysis is not mounted, has no reference, or is closed.
func (a *Analysis) Redo() uint64 {
	a.mu.Lock()
	if !a.mounted || a.closed || a.reference == "" {
		a.mu.Unlock()
		return 0
	}
	gen, snap := a.beginLocked()
	a.mu.Unlock()

	a.notify(snap)
	a.run(gen)
	return gen
}

// Next discards this Analysis and returns to the upload page
func (a *Analysis) Next(nav Navigator) error {
	a.Close()
	return nav.Navigate(UploadPath)
}

// Close cancels in-flight calls. Settlements arriving afterwards are ignored.
func (a *Analysis) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.listeners = make(map[int]func(Snapshot))
	a.mu.Unlock()

	a.cancel()
}

// Closed reports whether Close has been called
func (a *Analysis) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Snapshot returns the current state
func (a *Analysis) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap.clone()
}

// Subscribe registers fn to receive every later snapshot. fn runs outside the
// lock, possibly concurrently with other listeners, so it must compare Version.
func (a *Analysis) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return func() {}
	}
	id := a.nextListener
	a.nextListener++
	a.listeners[id] = fn
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Wait blocks until no call is in flight
func (a *Analysis) Wait() {
	a.wg.Wait()
}

func (a *Analysis) beginLocked() (uint64, Snapshot) {
	a.issued++
	a.inFlight++
	a.wg.Add(1)

	a.snap.State = StateAnalyzing
	a.snap.Status = a.opts.Messages.StatusAnalyzing
	a.snap.Issued = a.issued
	a.snap.InFlight = a.inFlight
	return a.issued, a.changedLocked()
}

func (a *Analysis) changedLocked() Snapshot {
	a.snap.Version++
	a.snap.StateName = a.snap.State.String()
	return a.snap.clone()
}

func (a *Analysis) run(gen uint64) {
	go func() {
		defer a.wg.Done()

		ctx := a.ctx
		if a.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
			defer cancel()
		}

		result, err := a.classifier.Analyze(ctx, a.reference)
		if err == nil && result == nil {
			err = ErrAnalysisFailed
		}
		a.settle(gen, result, err)
	}()
}

func (a *Analysis) settle(gen uint64, result *services.AnalysisResult, err error) {
	a.mu.Lock()
	a.inFlight--
	if a.closed {
		a.mu.Unlock()
		return
	}

	a.snap.InFlight = a.inFlight
	a.snap.Generation = gen

	if err != nil {
		log.Printf("ANALYZE: failed: reference=%q generation=%d err=%v", a.reference, gen, err)
		// The last good image stays on screen.
		a.snap.State = StateFailed
		a.snap.Status = a.opts.Messages.StatusFailed
		a.snap.LastError = err.Error()
	} else {
		a.snap.State = StateSucceeded
		if result.Data != "" {
			a.snap.ImageData = "data:image/png;base64," + result.Data
		}
		a.snap.ContainsMoeru = result.ContainsMoeru
		a.snap.ContainsMoenai = result.ContainsMoenai
		a.snap.DetectedObjects = models.PlaceholderObjects(result.ContainsMoeru, result.ContainsMoenai)
		a.snap.Status = a.opts.Messages.StatusSucceeded
		a.snap.LastError = ""
	}

	snap := a.changedLocked()
	a.mu.Unlock()

	a.notify(snap)
}

func (a *Analysis) notify(snap Snapshot) {
	a.mu.Lock()
	listeners := make([]func(Snapshot), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
