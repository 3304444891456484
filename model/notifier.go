package model

import "context"

const (
	AlertTypeInfo    = "info"
	AlertTypeWarning = "warning"
	AlertTypeError   = "error"

	EventAlert   = "event:alert"
	EventNewPost = "event:new_post"
)

type (
	// Notifier pushes real-time events to a user's browser sessions.
	Notifier interface {
		Alert(ctx context.Context, uid int64, alert Alert) error
		NotifyNew(ctx context.Context, uid int64, event string, payload any) error
		// NotifyTopic reaches everyone viewing the topic except exceptUid, usually the poster.
		NotifyTopic(ctx context.Context, tid, exceptUid int64, event string, payload any) error
	}

	Alert struct {
		Type    string `json:"type"`
		Title   string `json:"title,omitempty"`
		Message string `json:"message"`
		Timeout int    `json:"timeout,omitempty"`
	}
)
