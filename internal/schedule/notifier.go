package schedule

import (
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Notification is a short-lived message shown to one user.
type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Notifier interface {
	Notify(userID int64, level, message string)
}

// Notifications keeps per-user notifications until they auto-dismiss.
type Notifications struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[int64][]Notification
}

func NewNotifications(ttl time.Duration) *Notifications {
	return &Notifications{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[int64][]Notification),
	}
}

func (n *Notifications) Notify(userID int64, level, message string) {
	id, err := gonanoid.New()
	if err != nil {
		id = n.now().Format(time.RFC3339Nano)
	}
	now := n.now()

	n.mu.Lock()
	defer n.mu.Unlock()
	n.items[userID] = append(n.prune(userID, now), Notification{
		ID:        id,
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(n.ttl),
	})
}

// Live returns the user's notifications that have not expired yet.
func (n *Notifications) Live(userID int64) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	live := n.prune(userID, n.now())
	if len(live) == 0 {
		delete(n.items, userID)
		return nil
	}
	n.items[userID] = live
	return append([]Notification(nil), live...)
}

// Dismiss drops one notification before it expires.
func (n *Notifications) Dismiss(userID int64, id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	items := n.items[userID]
	for i, item := range items {
		if item.ID == id {
			n.items[userID] = append(items[:i:i], items[i+1:]...)
			return
		}
	}
}

func (n *Notifications) prune(userID int64, now time.Time) []Notification {
	var live []Notification
	for _, item := range n.items[userID] {
		if now.Before(item.ExpiresAt) {
			live = append(live, item)
		}
	}
	return live
}
