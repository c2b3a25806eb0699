package checkout

import "sync"

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// Notifier surfaces transient messages to the shopper.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Navigator moves the shopper to another page.
type Navigator interface {
	Redirect(path string)
}

// Inbox queues notifications and the last redirect until a caller drains
// them. It serves as both Notifier and Navigator for one session.
type Inbox struct {
	mu            sync.Mutex
	notifications []Notification
	redirect      string
}

func NewInbox() *Inbox {
	return &Inbox{}
}

func (i *Inbox) Success(message string) {
	i.push(Notification{Kind: NotificationSuccess, Message: message})
}

func (i *Inbox) Error(message string) {
	i.push(Notification{Kind: NotificationError, Message: message})
}

func (i *Inbox) Redirect(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.redirect = path
}

// Drain returns and clears the queued notifications and redirect.
func (i *Inbox) Drain() ([]Notification, string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	notifications, redirect := i.notifications, i.redirect
	i.notifications, i.redirect = nil, ""
	return notifications, redirect
}

func (i *Inbox) push(n Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.notifications = append(i.notifications, n)
}
