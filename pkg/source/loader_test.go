package source

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/model"
)

type clientFunc func(ctx context.Context, id string) (model.Template, error)

func (f clientFunc) Fetch(ctx context.Context, id string) (model.Template, error) {
	return f(ctx, id)
}

func TestLoader_States(t *testing.T) {
	loader := NewLoader(clientFunc(func(_ context.Context, id string) (model.Template, error) {
		if id == "bad" {
			return model.Template{}, &StatusError{Code: 500, URL: "http://x/templates/bad"}
		}
		return model.Template{ID: id, HTML: "<p/>"}, nil
	}))

	var states []State
	loader.OnChange(func(s Snapshot) { states = append(states, s.State) })

	if got := loader.Snapshot().State; got != StateIdle {
		t.Fatalf("expected idle, got %s", got)
	}
	if _, err := loader.Load(context.Background(), "123"); err != nil {
		t.Fatalf("load: %v", err)
	}
	snap := loader.Snapshot()
	if snap.State != StateReady || snap.Template.ID != "123" || snap.Generation != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	if _, err := loader.Load(context.Background(), "bad"); err == nil {
		t.Fatalf("expected failure")
	}
	snap = loader.Snapshot()
	var statusErr *StatusError
	if snap.State != StateFailed || !errors.As(snap.Err, &statusErr) {
		t.Fatalf("expected failed state with status error, got %+v", snap)
	}

	want := []State{StateLoading, StateReady, StateLoading, StateFailed}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Fatalf("state transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_DiscardsSupersededLoad(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	loader := NewLoader(clientFunc(func(ctx context.Context, id string) (model.Template, error) {
		if id == "slow" {
			close(started)
			<-release
			return model.Template{ID: "slow"}, nil
		}
		return model.Template{ID: id}, nil
	}))

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = loader.Load(context.Background(), "slow")
	}()

	<-started
	if _, err := loader.Load(context.Background(), "fast"); err != nil {
		t.Fatalf("load fast: %v", err)
	}
	close(release)
	wg.Wait()

	if !errors.Is(slowErr, ErrSuperseded) {
		t.Fatalf("expected superseded error, got %v", slowErr)
	}
	snap := loader.Snapshot()
	if snap.State != StateReady || snap.Template.ID != "fast" || snap.Generation != 2 {
		t.Fatalf("stale result leaked into snapshot: %+v", snap)
	}
}

func TestLoader_CancelledLoadRestoresPreviousState(t *testing.T) {
	loader := NewLoader(clientFunc(func(ctx context.Context, id string) (model.Template, error) {
		if id == "wait" {
			<-ctx.Done()
			return model.Template{}, ctx.Err()
		}
		return model.Template{ID: id}, nil
	}))
	if _, err := loader.Load(context.Background(), "first"); err != nil {
		t.Fatalf("load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Load(ctx, "wait"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	snap := loader.Snapshot()
	if snap.State != StateReady || snap.Template.ID != "first" {
		t.Fatalf("cancelled load should not replace ready state: %+v", snap)
	}
}
