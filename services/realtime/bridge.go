package realtime

import (
	"context"
	"encoding/json"
	"time"

	"learnhub/models"
	"learnhub/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// envelope is the message shape carried on the Redis Pub/Sub topic. It wraps
// the recipient-scoped notification so every instance can fan it back into
// its local in-memory Hub.
type envelope struct {
	UserID       int64                `json:"user_id"`
	Notification *models.Notification `json:"notification"`
	SentAt       time.Time            `json:"sent_at"`
}

// Bridge connects the local Hub with a Redis Pub/Sub topic so notifications
// published on any instance reach the sessions connected to every instance.
// With a nil client it degrades to single-instance mode, publishing straight
// into the local Hub.
type Bridge struct {
	hub    *Hub
	client *redis.Client
	topic  string
}

// NewBridge wires the hub to a Redis Pub/Sub topic and starts the subscriber
// loop. Callers keep using the returned Bridge as their Publisher.
func NewBridge(hub *Hub, client *redis.Client, topic string) *Bridge {
	b := &Bridge{hub: hub, client: client, topic: topic}
	if client != nil {
		go b.runSubscriber()
	}
	return b
}

// PublishNotification dispatches a notification towards the recipient's live
// sessions. Failures are logged and swallowed: real-time delivery is an
// optimization, never a guarantee.
func (b *Bridge) PublishNotification(userID int64, n *models.Notification) {
	if userID == 0 || n == nil {
		return
	}

	if b.client == nil {
		b.hub.Publish(userID, n)
		return
	}

	body, err := json.Marshal(envelope{UserID: userID, Notification: n, SentAt: time.Now().UTC()})
	if err != nil {
		utils.GetLogger().Error("realtime: failed to encode envelope", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.client.Publish(ctx, b.topic, body).Err(); err != nil {
		utils.GetLogger().Warn("realtime: publish failed, delivering locally only",
			zap.String("topic", b.topic), zap.Error(err))
		b.hub.Publish(userID, n)
	}
}

// runSubscriber listens on the shared topic and forwards events into the
// local Hub. Sessions on this instance receive notifications regardless of
// which instance produced them.
func (b *Bridge) runSubscriber() {
	logger := utils.GetLogger()
	ctx := context.Background()

	pubsub := b.client.Subscribe(ctx, b.topic)
	defer pubsub.Close()

	// Ensure subscription is established before reading messages.
	if _, err := pubsub.Receive(ctx); err != nil {
		logger.Error("realtime: failed to subscribe", zap.String("topic", b.topic), zap.Error(err))
		return
	}

	for msg := range pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			logger.Error("realtime: failed to decode message", zap.Error(err))
			continue
		}
		if env.UserID == 0 || env.Notification == nil {
			continue
		}
		b.hub.Publish(env.UserID, env.Notification)
	}
}
