package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const userChannelPrefix = "notifications:user:"

// UserChannel is the pub/sub channel carrying userID's notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf("%s%d", userChannelPrefix, userID)
}

// PubSub is the subset of the redis client used for fan-out.
type PubSub interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	PSubscribe(ctx context.Context, patterns ...string) *goredis.PubSub
}

// RedisPublisher forwards events to every server instance through redis so
// that a user connected to any instance receives them.
type RedisPublisher struct {
	client PubSub
	log    *logrus.Entry
}

func NewRedisPublisher(client PubSub, log *logrus.Entry) *RedisPublisher {
	return &RedisPublisher{client: client, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID uint, ev Event) error {
	frame, err := Encode(ev)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return p.client.Publish(ctx, UserChannel(userID), string(frame))
}

// Subscribe delivers every frame published on a user channel to deliver
// until ctx is done. It returns once the subscription is established.
func (p *RedisPublisher) Subscribe(ctx context.Context, deliver func(userID uint, frame []byte)) error {
	sub := p.client.PSubscribe(ctx, userChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe to notifications: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, err := strconv.ParseUint(strings.TrimPrefix(msg.Channel, userChannelPrefix), 10, 64)
				if err != nil {
					p.log.WithField("channel", msg.Channel).Warn("Ignoring message on unexpected channel")
					continue
				}
				deliver(uint(userID), []byte(msg.Payload))
			}
		}
	}()
	return nil
}
