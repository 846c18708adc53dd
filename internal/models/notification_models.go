package models

import "time"

type NotificationType string

const (
	NotificationDirect    NotificationType = "direct"
	NotificationBroadcast NotificationType = "broadcast"
)

// Notification is either addressed to one Email (direct) or to everyone
// (broadcast). For broadcasts IsRead is computed per reader from ReadBy.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Email     string           `json:"email,omitempty"`
	IsRead    bool             `json:"isRead"`
	ReadBy    []string         `json:"-"`
	Message   string           `json:"message"`
	RelatedID string           `json:"related_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
	Unread        int            `json:"unread"`
}

// ReadAllResult counts the direct and broadcast records touched by a read-all.
type ReadAllResult struct {
	Direct    int64 `json:"direct"`
	Broadcast int64 `json:"broadcast"`
}
