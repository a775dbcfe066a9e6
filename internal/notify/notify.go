// Package notify delivers like, match and message events to users.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dating-match-server/internal/models"
)

// Event is one notification addressed to a user.
type Event struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	FromUserID uint      `json:"from_user_id,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher delivers an event to a user. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, userID uint, ev Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, userID uint, ev Event) error

func (f PublisherFunc) Publish(ctx context.Context, userID uint, ev Event) error {
	return f(ctx, userID, ev)
}

func LikeEvent(from uint) Event {
	return Event{
		Type:       models.NotificationLike,
		Message:    fmt.Sprintf("User %d liked your profile!", from),
		FromUserID: from,
		At:         time.Now().UTC(),
	}
}

func MatchEvent(with uint) Event {
	return Event{
		Type:       models.NotificationMatch,
		Message:    "You have a new match!",
		FromUserID: with,
		At:         time.Now().UTC(),
	}
}

func AcceptedLikeEvent(accepter uint) Event {
	return Event{
		Type:       models.NotificationAcceptedLike,
		Message:    fmt.Sprintf("User %d accepted your like, you are now matched", accepter),
		FromUserID: accepter,
		At:         time.Now().UTC(),
	}
}

// MessageEvent carries a chat message to its receiver.
func MessageEvent(msg *models.Message) Event {
	return Event{
		Type:       models.NotificationMessage,
		Message:    fmt.Sprintf("New message from user %d", msg.SenderID),
		FromUserID: msg.SenderID,
		Payload:    msg,
		At:         time.Now().UTC(),
	}
}

// envelope is the frame written to live sessions.
type envelope struct {
	Event string `json:"event"`
	Data  Event  `json:"data"`
}

// Encode renders ev as the frame sent to a live session.
func Encode(ev Event) ([]byte, error) {
	return json.Marshal(envelope{Event: "notification", Data: ev})
}
