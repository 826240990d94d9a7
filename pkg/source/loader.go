package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// State is the lifecycle of the current template fetch.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrSuperseded is returned by Load when a newer load replaced it.
var ErrSuperseded = errors.New("source: load superseded")

// Snapshot is the observable loader state.
type Snapshot struct {
	State      State
	ID         string
	Template   model.Template
	Err        error
	Generation uint64
}

// Loader tracks one in-flight fetch at a time. Every Load bumps the
// generation and cancels the previous fetch; results from older generations
// or cancelled contexts never reach the snapshot.
type Loader struct {
	client Client
	logger *slog.Logger

	mu        sync.Mutex
	snap      Snapshot
	cancel    context.CancelFunc
	listeners []func(Snapshot)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger overrides the loader's logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader wraps client.
func NewLoader(client Client, opts ...LoaderOption) *Loader {
	l := &Loader{client: client, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// OnChange registers fn to observe every state transition. fn runs on the
// loading goroutine with the loader locked and must not call back into it.
func (l *Loader) OnChange(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Snapshot returns the current state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Load fetches id and blocks until the fetch completes.
func (l *Loader) Load(ctx context.Context, id string) (model.Template, error) {
	if l.client == nil {
		return model.Template{}, errors.New("source: loader has no client")
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	previous := l.snap
	l.snap = Snapshot{State: StateLoading, ID: id, Generation: previous.Generation + 1}
	generation := l.snap.Generation
	l.emitLocked()
	l.mu.Unlock()

	tpl, err := l.client.Fetch(fetchCtx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	cancel()

	if l.snap.Generation != generation {
		l.logger.Debug("source: discarding superseded load", "id", id, "generation", generation)
		return model.Template{}, ErrSuperseded
	}
	l.cancel = nil

	if ctxErr := ctx.Err(); ctxErr != nil {
		previous.Generation = generation
		l.snap = previous
		l.emitLocked()
		return model.Template{}, ctxErr
	}

	if err != nil {
		l.logger.Warn("source: template load failed", "id", id, "error", err)
		l.snap = Snapshot{State: StateFailed, ID: id, Err: err, Generation: generation}
	} else {
		l.snap = Snapshot{State: StateReady, ID: id, Template: tpl, Generation: generation}
	}
	l.emitLocked()
	return tpl, err
}

func (l *Loader) emitLocked() {
	snap := l.snap
	for _, fn := range l.listeners {
		fn(snap)
	}
}
