package mutate

import "sync"

// Producer computes a property's current value. It may be expensive; the
// walker never calls it directly, only through an Accessor.
type Producer func() (any, error)

// Accessor memoizes a Producer so a property's value is computed at most
// once per visit, no matter how many collaborators ask for it: the mutator,
// the deferred child walk, and the reconstruction step all share one cell.
//
// Concurrent first reads are safe: exactly one producer execution happens
// and every caller observes the same cached value and error.
type Accessor struct {
	once    sync.Once
	produce Producer
	value   any
	err     error
}

// NewAccessor wraps produce in a memoizing accessor.
func NewAccessor(produce Producer) *Accessor {
	return &Accessor{produce: produce}
}

// Get returns the wrapped value, running the producer on the first call
// only. The producer is released after it runs.
func (a *Accessor) Get() (any, error) {
	a.once.Do(func() {
		a.value, a.err = a.produce()
		a.produce = nil
	})
	return a.value, a.err
}
