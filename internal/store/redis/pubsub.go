package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type PubSub struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &PubSub{client: client}, nil
}

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

func (ps *PubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ps.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Publish: %w", err)
	}
	return nil
}

// Message is one delivery from a pattern subscription.
type Message struct {
	Channel string
	Payload []byte
}

// SubscribeUserNotifications subscribes to every user notification channel.
// REST handlers publish out-of-band alerts there; the realtime hub forwards
// them into the matching user rooms.
func (ps *PubSub) SubscribeUserNotifications(ctx context.Context) (<-chan Message, func(), error) {
	sub := ps.client.PSubscribe(ctx, userChannelPattern)

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.SubscribeUserNotifications: receive confirmation: %w", err)
	}

	out := make(chan Message, 64)
	redisCh := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case out <- Message{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}

const (
	userChannelPrefix  = "notify:user:"
	userChannelPattern = userChannelPrefix + "*"
)

// UserChannel returns the Redis channel name for one user's notifications.
func UserChannel(userID uuid.UUID) string {
	return userChannelPrefix + userID.String()
}

// UserIDFromChannel extracts the user id from a notification channel name.
func UserIDFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, userChannelPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(channel, userChannelPrefix)
	return id, id != ""
}
