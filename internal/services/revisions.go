package services

import (
	"go.uber.org/atomic"
	"sync"
)

// Revisions counts writes per owner. Cached statistics are keyed by the
// revision so a write makes every older entry unreachable.
type Revisions struct {
	counters sync.Map
}

func NewRevisions() *Revisions {
	return &Revisions{}
}

func (r *Revisions) counter(owner string) *atomic.Uint64 {
	if v, ok := r.counters.Load(owner); ok {
		return v.(*atomic.Uint64)
	}
	v, _ := r.counters.LoadOrStore(owner, atomic.NewUint64(0))
	return v.(*atomic.Uint64)
}

func (r *Revisions) Get(owner string) uint64 {
	return r.counter(owner).Load()
}

func (r *Revisions) Bump(owner string) uint64 {
	return r.counter(owner).Inc()
}
