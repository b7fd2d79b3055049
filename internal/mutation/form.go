package mutation

import (
	"context"
	"errors"
	"sync"
)

// State is the lifecycle of an edit form.
type State int

const (
	Idle State = iota
	Submitting
	Closed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Closed:
		return "closed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrBusy is returned by Submit while a submission is in flight.
var ErrBusy = errors.New("form is already submitting")

// Form tracks one add or edit dialog. Values survive a failed submission so
// the user can correct and retry; a successful one closes the form and
// resets the values.
type Form[V any] struct {
	build   func(V) Op
	initial V

	mu     sync.Mutex
	state  State
	values V
	err    error
}

// NewForm returns an idle form prefilled with initial. build turns the
// current values into the operation to submit.
func NewForm[V any](initial V, build func(V) Op) *Form[V] {
	return &Form[V]{build: build, initial: initial, values: initial}
}

func (f *Form[V]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form[V]) Values() V {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Err is the error of the last failed submission.
func (f *Form[V]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Set replaces the field values. It is ignored while submitting.
func (f *Form[V]) Set(v V) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return
	}
	f.values = v
}

// Open shows the form again, keeping values from a failed attempt.
func (f *Form[V]) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return
	}
	f.state, f.err = Idle, nil
}

// Submit runs the form's operation through p.
func (f *Form[V]) Submit(ctx context.Context, p *Pipeline) error {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return ErrBusy
	}
	f.state, f.err = Submitting, nil
	op := f.build(f.values)
	f.mu.Unlock()

	err := p.Mutate(ctx, op)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state, f.err = Failed, err
		return err
	}
	f.state, f.values = Closed, f.initial
	return nil
}
