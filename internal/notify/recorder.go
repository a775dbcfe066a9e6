package notify

import (
	"context"

	"dating-match-server/internal/models"
)

// NotificationStore persists inbox entries.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Recorder keeps an inbox row for every event so that users who were
// offline can read it later.
type Recorder struct {
	store NotificationStore
}

func NewRecorder(store NotificationStore) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) Publish(ctx context.Context, userID uint, ev Event) error {
	n := &models.Notification{
		UserID:  userID,
		Type:    ev.Type,
		Message: ev.Message,
	}
	if ev.FromUserID != 0 {
		from := ev.FromUserID
		n.FromUserID = &from
	}
	if !ev.At.IsZero() {
		n.CreatedAt = ev.At
	}
	return r.store.Create(ctx, n)
}
