package productmap

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is how a task ended.
type Outcome string

// Task outcomes.
const (
	OutcomeFetched   Outcome = "fetched"   // loaded from the remote source
	OutcomeCached    Outcome = "cached"    // loaded from the local snapshot while offline
	OutcomeSkipped   Outcome = "skipped"   // another load was in flight
	OutcomeNoUser    Outcome = "no_user"   // nobody signed in, nothing done
	OutcomeToggled   Outcome = "toggled"   // favorite membership flipped
	OutcomeRefreshed Outcome = "refreshed" // view recomputed from memory
	OutcomeFailed    Outcome = "failed"
)

// String returns the outcome name.
func (o Outcome) String() string {
	return string(o)
}

// Task is the future of an asynchronous engine operation. It completes
// exactly once.
type Task struct {
	id      string
	op      string
	started time.Time

	done     chan struct{}
	once     sync.Once
	mu       sync.RWMutex
	outcome  Outcome
	err      error
	finished time.Time
}

func newTask(op string) *Task {
	return &Task{
		id:      uuid.NewString(),
		op:      op,
		started: time.Now(),
		done:    make(chan struct{}),
	}
}

// completedTask returns a task that is already done.
func completedTask(op string, outcome Outcome, err error) *Task {
	t := newTask(op)
	t.complete(outcome, err)
	return t
}

func (t *Task) complete(outcome Outcome, err error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.outcome = outcome
		t.err = err
		t.finished = time.Now()
		t.mu.Unlock()
		close(t.done)
	})
}

// ID returns the task id.
func (t *Task) ID() string {
	return t.id
}

// Op returns the operation name ("load", "toggle_favorite", "refresh").
func (t *Task) Op() string {
	return t.op
}

// Done is closed when the task completes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx ends.
func (t *Task) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Result returns the outcome and error. Before completion the outcome is empty.
func (t *Task) Result() (Outcome, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.outcome, t.err
}

// Duration returns how long the task ran, or has been running.
func (t *Task) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.finished.IsZero() {
		return time.Since(t.started)
	}
	return t.finished.Sub(t.started)
}
