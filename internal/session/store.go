// Package session owns the persisted authentication session: one durable
// record holding the bearer token, refresh token, expiry, and cached user
// profile, plus change notification for anything observing auth state.
package session

import (
	"sync"

	"github.com/Shravani-Dhumal/Verifixia/internal/models"
)

// Store is the single source of truth for "is there a currently-valid
// session, and who is it". Reads fail soft: missing, corrupt, or expired
// state all read back as absent, never as an error.
type Store interface {
	// Read returns the current session, or nil when storage is empty,
	// unreadable, corrupt, or the session has expired.
	Read() *models.Session

	// Write persists the session verbatim and notifies subscribers, both
	// in this process and in other processes sharing the store.
	Write(s *models.Session) error

	// Clear removes the persisted session and emits the same notification.
	Clear() error

	// Subscribe invokes fn immediately with the current user (nil when no
	// valid session exists), then again on every subsequent change. The
	// returned function detaches the subscription from every notification
	// source it was wired to.
	Subscribe(fn func(*models.User)) (unsubscribe func())

	// Close releases watchers and connections held by the store.
	Close() error
}

// notifier is the in-process fan-out shared by both store backends.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(*models.User)
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]func(*models.User))}
}

func (n *notifier) add(fn func(*models.User)) (id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id = n.nextID
	n.nextID++
	n.subs[id] = fn
	return id
}

func (n *notifier) remove(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

func (n *notifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// broadcast delivers the current user to every subscriber. Callbacks run on
// the caller's goroutine, mirroring same-thread event delivery.
func (n *notifier) broadcast(u *models.User) {
	n.mu.Lock()
	fns := make([]func(*models.User), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}
