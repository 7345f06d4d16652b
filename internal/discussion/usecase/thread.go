package usecase

import (
	"sync"
	"sync/atomic"

	"clubportal/internal/discussion/domain/model"
)

// Thread is the forest currently displayed for one event in one view. Readers load
// the published forest without locking; writers are serialised and publish each new
// forest with a single pointer swap.
type Thread struct {
	eventUID string
	writeMu  sync.Mutex
	forest   atomic.Pointer[model.Forest]
}

// NewThread creates a thread displaying initial.
func NewThread(eventUID string, initial model.Forest) *Thread {
	t := &Thread{eventUID: eventUID}
	t.forest.Store(&initial)
	return t
}

// EventUID returns the event this thread belongs to.
func (t *Thread) EventUID() string { return t.eventUID }

// Snapshot returns the published forest. Callers must not modify it.
func (t *Thread) Snapshot() model.Forest {
	return *t.forest.Load()
}

// ApplyTopLevel publishes a forest with node prepended.
func (t *Thread) ApplyTopLevel(node model.Comment) model.Forest {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	next := model.AddTopLevel(t.Snapshot(), node)
	t.forest.Store(&next)
	return next
}

// ApplyReply publishes a forest with node under parentID. When the parent is not
// displayed nothing is published and false is returned.
func (t *Thread) ApplyReply(parentID string, node model.Comment) (model.Forest, bool) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	next, ok := model.AddReply(t.Snapshot(), parentID, node)
	if ok {
		t.forest.Store(&next)
	}
	return next, ok
}

// Board keeps the single thread each profile is viewing. Opening another event
// discards the previous forest.
type Board struct {
	mu      sync.RWMutex
	threads map[string]*Thread
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{threads: make(map[string]*Thread)}
}

// Open replaces the profile's thread.
func (b *Board) Open(profileID, eventUID string, forest model.Forest) *Thread {
	t := NewThread(eventUID, forest)
	b.mu.Lock()
	b.threads[profileID] = t
	b.mu.Unlock()
	return t
}

// Current returns the profile's open thread.
func (b *Board) Current(profileID string) (*Thread, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.threads[profileID]
	return t, ok
}

// Close discards the profile's thread.
func (b *Board) Close(profileID string) {
	b.mu.Lock()
	delete(b.threads, profileID)
	b.mu.Unlock()
}
