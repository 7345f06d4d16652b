package usecase

import (
	"sync"

	apperrors "clubportal/internal/shared/errors"
)

// PendingActions tracks in-flight join/leave actions by key.
type PendingActions struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewPendingActions creates an empty tracker.
func NewPendingActions() *PendingActions {
	return &PendingActions{pending: make(map[string]struct{})}
}

// Begin marks key as pending and returns the function that clears it. The caller must
// call done on every path.
func (p *PendingActions) Begin(key string) (done func(), err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.pending[key]; busy {
		return nil, apperrors.NewConflictError("Another request for this item is still in progress").
			WithCause(apperrors.ErrActionPending)
	}
	p.pending[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.pending, key)
			p.mu.Unlock()
		})
	}, nil
}

// IsPending reports whether key has an action in flight.
func (p *PendingActions) IsPending(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, busy := p.pending[key]
	return busy
}
