package storage

import (
	"context"
	"sync"
	"time"

	"github.com/vanderheijden86/kanboard/pkg/board"
	"github.com/vanderheijden86/kanboard/pkg/debug"
	"github.com/vanderheijden86/kanboard/pkg/model"
	"github.com/vanderheijden86/kanboard/pkg/watcher"
)

// DefaultAutosaveDelay is the quiet period before a change is written.
const DefaultAutosaveDelay = 300 * time.Millisecond

// Subscriber is the part of board.Store the autosaver needs.
type Subscriber interface {
	State() model.BoardState
	Subscribe(fn board.Listener) (unsubscribe func())
}

// AutosaveOption configures an Autosaver.
type AutosaveOption func(*Autosaver)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		if d > 0 {
			a.delay = d
		}
	}
}

// WithErrorHandler receives save failures from background saves.
func WithErrorHandler(fn func(error)) AutosaveOption {
	return func(a *Autosaver) {
		if fn != nil {
			a.onError = fn
		}
	}
}

// Autosaver writes the board to a Backend a short while after it changes.
// The state is captured on the store's goroutine when the change is
// announced, so the store itself is never read from the save goroutine.
type Autosaver struct {
	backend   Backend
	delay     time.Duration
	onError   func(error)
	debouncer *watcher.Debouncer

	mu        sync.Mutex
	pending   *model.BoardState
	lastSaved *model.BoardState

	saveMu      sync.Mutex
	unsubscribe func()
}

// NewAutosaver subscribes to src. The current state of src is taken as
// already saved.
func NewAutosaver(src Subscriber, backend Backend, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		backend: backend,
		delay:   DefaultAutosaveDelay,
		onError: func(err error) { debug.Logger().WithError(err).Warn("autosave failed") },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.debouncer = watcher.NewDebouncer(a.delay)

	initial := src.State()
	a.lastSaved = &initial
	a.unsubscribe = src.Subscribe(func() { a.schedule(src.State()) })
	return a
}

func (a *Autosaver) schedule(state model.BoardState) {
	a.mu.Lock()
	if a.pending != nil && a.pending.Equal(state) {
		a.mu.Unlock()
		return
	}
	if a.pending == nil && a.lastSaved != nil && a.lastSaved.Equal(state) {
		a.mu.Unlock()
		return
	}
	a.pending = &state
	a.mu.Unlock()

	a.debouncer.Trigger(func() {
		if err := a.Flush(context.Background()); err != nil {
			a.onError(err)
		}
	})
}

// Pending reports whether a change is waiting to be written.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// LastSaved returns the most recent state written, or loaded at start.
func (a *Autosaver) LastSaved() (model.BoardState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastSaved == nil {
		return model.BoardState{}, false
	}
	return a.lastSaved.Clone(), true
}

// MarkSaved records state as matching what the backend holds, for example
// after a reload from disk.
func (a *Autosaver) MarkSaved(state model.BoardState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastSaved = &state
}

// Flush writes any pending change now.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	state := a.pending
	a.mu.Unlock()
	if state == nil {
		return nil
	}

	if err := a.backend.Save(ctx, *state); err != nil {
		return err
	}

	a.mu.Lock()
	// A newer change may have arrived while saving; keep it pending.
	if a.pending == state {
		a.pending = nil
	}
	a.lastSaved = state
	a.mu.Unlock()
	return nil
}

// Close stops listening, cancels the timer and writes what is pending.
func (a *Autosaver) Close(ctx context.Context) error {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.debouncer.Cancel()
	return a.Flush(ctx)
}
