package services

import "sync"

// Identity is the authenticated principal, or nil when signed out.
type Identity struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// IdentityBroadcaster turns the backend's callback-style auth notification
// into an explicit subscription interface. Subscribe delivers the current
// identity (or nil) exactly once before any change notifications.
type IdentityBroadcaster struct {
	mu      sync.Mutex
	current *Identity
	subs    map[int]func(*Identity)
	nextID  int
}

func NewIdentityBroadcaster() *IdentityBroadcaster {
	return &IdentityBroadcaster{subs: make(map[int]func(*Identity))}
}

// Subscribe registers fn and immediately invokes it with the current
// identity. The returned function removes the subscription.
func (b *IdentityBroadcaster) Subscribe(fn func(*Identity)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	current := b.current
	b.mu.Unlock()

	fn(current)

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Set replaces the current identity and notifies every subscriber.
func (b *IdentityBroadcaster) Set(identity *Identity) {
	b.mu.Lock()
	b.current = identity
	fns := make([]func(*Identity), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}

func (b *IdentityBroadcaster) Current() *Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
