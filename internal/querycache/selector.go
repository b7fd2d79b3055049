package querycache

import "sync"

// Selection is a live projection of one query. It shares the query's cache
// entry, so any number of selections on the same key cause no extra fetches.
type Selection[T, S any] struct {
	project  func(T) S
	equal    func(a, b S) bool
	onChange func(S, error)

	mu      sync.Mutex
	version uint64
	value   S
	has     bool
	err     error
	unsub   func()
}

// Select subscribes to q and reports the projected slice through onChange,
// once when a value is first available and afterwards only when equal says
// the slice changed or the error state changed.
func Select[T, S any](q *Query[T], project func(T) S, equal func(a, b S) bool, onChange func(S, error)) *Selection[T, S] {
	s := &Selection[T, S]{project: project, equal: equal, onChange: onChange}
	s.mu.Lock()
	s.unsub = q.Subscribe(s.observe)
	s.mu.Unlock()
	if e, ok := q.Entry(); ok {
		s.observe(e)
	}
	return s
}

// Value returns the last projected slice.
func (s *Selection[T, S]) Value() (S, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.has
}

// Err returns the error of the last failed fetch, cleared by the next success.
func (s *Selection[T, S]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close unsubscribes. Late notifications are ignored.
func (s *Selection[T, S]) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (s *Selection[T, S]) observe(e Entry[T]) {
	s.mu.Lock()
	if e.version <= s.version {
		s.mu.Unlock()
		return
	}
	s.version = e.version

	valueChanged := false
	if e.HasValue {
		next := s.project(e.Value)
		if !s.has || !s.equal(s.value, next) {
			s.value, s.has = next, true
			valueChanged = true
		}
	}
	errChanged := !sameError(s.err, e.Err)
	s.err = e.Err
	value, err := s.value, s.err
	s.mu.Unlock()

	if valueChanged || errChanged {
		s.onChange(value, err)
	}
}

func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Error() == b.Error()
}
