package notify

import (
	"context"
	"fmt"
	"strconv"

	"dating-match-server/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// UserLookup resolves a user's device token.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// PushPublisher sends events as Firebase Cloud Messaging pushes to the
// user's registered device. Users without a device token are skipped.
type PushPublisher struct {
	client messagingClient
	users  UserLookup
}

func NewPushPublisher(ctx context.Context, projectID, credentialsPath string, users UserLookup) (*PushPublisher, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return &PushPublisher{client: client, users: users}, nil
}

func (p *PushPublisher) Publish(ctx context.Context, userID uint, ev Event) error {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.DeviceToken == nil || *user.DeviceToken == "" {
		return nil
	}

	data := map[string]string{"type": ev.Type}
	if ev.FromUserID != 0 {
		data["from_user_id"] = strconv.FormatUint(uint64(ev.FromUserID), 10)
	}
	_, err = p.client.Send(ctx, &messaging.Message{
		Token: *user.DeviceToken,
		Notification: &messaging.Notification{
			Title: pushTitle(ev.Type),
			Body:  ev.Message,
		},
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("send push to user %d: %w", userID, err)
	}
	return nil
}

func pushTitle(kind string) string {
	switch kind {
	case models.NotificationMatch:
		return "It's a match!"
	case models.NotificationLike:
		return "Someone likes you"
	case models.NotificationAcceptedLike:
		return "Like accepted"
	case models.NotificationMessage:
		return "New message"
	default:
		return "Notification"
	}
}
