// Package status reports the progress of text generation through a status
// surface. The Reporter is a three state machine driven through one
// transition function; rendering is derived from the state.
package status

import (
	"fmt"
	"sync"
	"time"

	"github.com/kardolus/textgen/types"
	"go.uber.org/zap"
)

const (
	Label        = "Text Generator"
	ErrorDisplay = 3 * time.Second
)

type State int

const (
	Idle State = iota
	Processing
	Error
)

func (s State) String() string {
	switch s {
	case Processing:
		return "processing"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// Surface displays a status label.
type Surface interface {
	Show(state State, text string)
	Clear()
}

// Scheduler runs f once after d. The returned function cancels a pending run.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type event int

const (
	started event = iota
	succeeded
	failed
	expired
	refreshed
)

type Reporter struct {
	mu        sync.Mutex
	surface   Surface
	scheduler Scheduler
	logger    *zap.SugaredLogger

	state     State
	hint      string
	maxTokens int
	visible   bool

	// epoch identifies the latest transition; a pending revert only fires
	// if nothing happened since it was scheduled.
	epoch      uint64
	stopRevert func() bool
}

func New(surface Surface, maxTokens int, visible bool) *Reporter {
	r := &Reporter{
		surface:   surface,
		scheduler: realScheduler{},
		logger:    zap.NewNop().Sugar(),
		maxTokens: maxTokens,
		visible:   visible,
	}
	r.render()
	return r
}

func (r *Reporter) WithScheduler(s Scheduler) *Reporter {
	r.scheduler = s
	return r
}

func (r *Reporter) WithLogger(logger *zap.SugaredLogger) *Reporter {
	r.logger = logger
	return r
}

// Start marks an invocation as in flight.
func (r *Reporter) Start() {
	r.transition(started, nil)
}

// Succeed returns the reporter to Idle.
func (r *Reporter) Succeed() {
	r.transition(succeeded, nil)
}

// Fail shows a short hint for err and reverts to Idle after ErrorDisplay.
func (r *Reporter) Fail(err error) {
	r.transition(failed, err)
}

// SetMaxTokens updates the token limit shown in the label.
func (r *Reporter) SetMaxTokens(maxTokens int) {
	r.mu.Lock()
	r.maxTokens = maxTokens
	r.mu.Unlock()
	r.transition(refreshed, nil)
}

// SetVisible toggles rendering. Transitions still happen when hidden.
func (r *Reporter) SetVisible(visible bool) {
	r.mu.Lock()
	r.visible = visible
	r.mu.Unlock()
	r.transition(refreshed, nil)
}

func (r *Reporter) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Text is the label for the current state.
func (r *Reporter) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text()
}

func (r *Reporter) transition(ev event, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apply(ev, err)
}

// apply is the single transition function. r.mu must be held.
func (r *Reporter) apply(ev event, err error) {
	from := r.state

	switch ev {
	case started:
		r.cancelRevert()
		r.state, r.hint = Processing, ""
	case succeeded:
		r.cancelRevert()
		r.state, r.hint = Idle, ""
	case failed:
		r.cancelRevert()
		r.state, r.hint = Error, types.Hint(err)
	case expired:
		r.stopRevert = nil
		r.state, r.hint = Idle, ""
	case refreshed:
	}

	if ev != refreshed {
		r.epoch++
	}
	if ev == failed {
		r.scheduleRevert(r.epoch)
	}
	if from != r.state {
		r.logger.Debugf("status %s -> %s", from, r.state)
	}
	r.render()
}

func (r *Reporter) scheduleRevert(epoch uint64) {
	r.stopRevert = r.scheduler.AfterFunc(ErrorDisplay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.epoch != epoch {
			return
		}
		r.apply(expired, nil)
	})
}

func (r *Reporter) cancelRevert() {
	if r.stopRevert != nil {
		r.stopRevert()
		r.stopRevert = nil
	}
}

func (r *Reporter) text() string {
	label := fmt.Sprintf("%s(%d)", Label, r.maxTokens)
	switch r.state {
	case Processing:
		return label + ": processing..."
	case Error:
		return label + ": Error: " + r.hint
	default:
		return label
	}
}

func (r *Reporter) render() {
	if r.surface == nil {
		return
	}
	if !r.visible {
		r.surface.Clear()
		return
	}
	r.surface.Show(r.state, r.text())
}
