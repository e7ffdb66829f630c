// Package notify shows desktop notifications when an item starts playing
// or playback fails.
package notify

// Urgency is a freedesktop notification urgency level.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification is one desktop notification.
type Notification struct {
	Title      string
	Body       string
	Icon       string // file path or icon name
	Timeout    int32  // ms; -1 leaves it to the server, 0 never expires
	ReplacesID uint32 // 0 opens a new notification
	Urgency    Urgency
}

// Notifier sends notifications. Implementations without a notification
// service return id 0 and no error.
type Notifier interface {
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}
