// Package pubsub fans dashboard events out over Redis pub/sub and the
// in-process WebSocket hub.
package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Bus struct {
	rdb   *redis.Client
	log   *zap.Logger
	ctx   context.Context
	wsHub WSHub
}

type WSHub interface {
	Publish(channel string, message map[string]interface{})
}

// New builds a bus. A nil redis client is valid: events then reach only
// the local WebSocket hub, which is all the memory backend needs.
func New(rdb *redis.Client, log *zap.Logger) *Bus {
	return &Bus{
		rdb: rdb,
		log: log,
		ctx: context.Background(),
	}
}

// SetWSHub sets the WebSocket hub for event broadcasting
func (b *Bus) SetWSHub(hub WSHub) {
	b.wsHub = hub
}

// PublishReports publishes an event to the global reports channel
// watched by the manager dashboard.
func (b *Bus) PublishReports(event map[string]interface{}) error {
	return b.Publish("reports", event)
}

// PublishReport publishes an event to a single report's channel.
func (b *Bus) PublishReport(reportID string, event map[string]interface{}) error {
	return b.Publish("report:"+reportID, event)
}

// Publish publishes an event to a channel
func (b *Bus) Publish(channel string, event map[string]interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if b.rdb != nil {
		if err := b.rdb.Publish(b.ctx, channel, data).Err(); err != nil {
			b.log.Error("Failed to publish event", zap.String("channel", channel), zap.Error(err))
			return err
		}
	}

	if b.wsHub != nil {
		b.wsHub.Publish(channel, event)
	}

	b.log.Debug("Published event", zap.String("channel", channel), zap.String("event", string(data)))
	return nil
}
