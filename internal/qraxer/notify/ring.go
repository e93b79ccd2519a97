// Package notify keeps recent check-in notifications in memory for the
// front desk.
package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
)

// DefaultCapacity is how many notifications are retained.
const DefaultCapacity = 50

var (
	ErrNotFound         = errors.New("notify: notification not found")
	ErrAlreadyResponded = errors.New("notify: notification already responded")
)

// Ring is a bounded list of notifications, newest first. Pushing beyond
// capacity drops the oldest entry. Safe for concurrent use.
type Ring struct {
	mu       sync.Mutex
	items    []domain.CheckinNotification
	capacity int
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{items: make([]domain.CheckinNotification, 0, capacity), capacity: capacity}
}

// Push prepends n.
func (r *Ring) Push(n domain.CheckinNotification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) == r.capacity {
		r.items = r.items[:r.capacity-1]
	}
	r.items = append(r.items, domain.CheckinNotification{})
	copy(r.items[1:], r.items)
	r.items[0] = n
}

// All returns a copy of every retained notification, newest first.
func (r *Ring) All() []domain.CheckinNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.CheckinNotification(nil), r.items...)
}

// Pending returns the notifications nobody has responded to, newest first.
func (r *Ring) Pending() []domain.CheckinNotification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.CheckinNotification, 0, len(r.items))
	for _, n := range r.items {
		if n.Pending() {
			out = append(out, n)
		}
	}
	return out
}

// Respond records a response on notification id.
func (r *Ring) Respond(id, response, by string, at time.Time) (domain.CheckinNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID != id {
			continue
		}
		if !r.items[i].Pending() {
			return r.items[i], ErrAlreadyResponded
		}
		r.items[i].Response = response
		r.items[i].RespondedAt = &at
		r.items[i].RespondedBy = by
		return r.items[i], nil
	}
	return domain.CheckinNotification{}, ErrNotFound
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
