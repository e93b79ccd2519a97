// Package events publishes repair domain events through watermill. The
// in-process gochannel backend is used by default, Redis streams when a
// Redis client is configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"github.com/ithesk/qraxer/pkg/idx"
)

const (
	TopicRepairStateChanged = "repair.state_changed"
	TopicRepairCheckin      = "repair.checkin"
)

// RepairStateChanged is published after a repair transition was written.
type RepairStateChanged struct {
	RepairID   int64     `json:"repairId"`
	RepairCode string    `json:"repairCode"`
	OldState   string    `json:"oldState"`
	NewState   string    `json:"newState"`
	Note       string    `json:"note,omitempty"`
	UserID     string    `json:"userId"`
	At         time.Time `json:"at"`
}

// RepairCheckedIn is published when a technician checks a repair in.
type RepairCheckedIn struct {
	NotificationID string    `json:"notificationId"`
	RepairID       int64     `json:"repairId"`
	RepairCode     string    `json:"repairCode"`
	TechnicianID   string    `json:"technicianId"`
	TechnicianName string    `json:"technicianName"`
	At             time.Time `json:"at"`
}

// Publisher wraps a watermill publisher with typed events.
type Publisher struct {
	pub message.Publisher
}

func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

// NewInMemory returns a gochannel pub/sub. Messages published without a
// subscriber are dropped.
func NewInMemory(logger *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
}

// NewRedisStream returns a publisher writing to Redis streams named after
// the topics.
func NewRedisStream(client redis.UniversalClient, logger *slog.Logger) (message.Publisher, error) {
	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{Client: client}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("events: redis stream publisher: %w", err)
	}
	return pub, nil
}

func (p *Publisher) PublishStateChanged(ctx context.Context, e RepairStateChanged) error {
	return p.publish(ctx, TopicRepairStateChanged, e)
}

func (p *Publisher) PublishCheckin(ctx context.Context, e RepairCheckedIn) error {
	return p.publish(ctx, TopicRepairCheckin, e)
}

func (p *Publisher) Close() error { return p.pub.Close() }

func (p *Publisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", topic, err)
	}

	msg := message.NewMessage(idx.New().String(), payload)
	msg.Metadata.Set("topic", topic)
	msg.SetContext(ctx)

	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("events: publish %s: %w", topic, err)
	}
	return nil
}

// Tail logs every event published on sub until ctx is cancelled. It gives
// the in-process backend an audit trail.
func Tail(ctx context.Context, sub message.Subscriber, logger *slog.Logger) error {
	for _, topic := range []string{TopicRepairStateChanged, TopicRepairCheckin} {
		msgs, err := sub.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("events: subscribe %s: %w", topic, err)
		}
		go func(topic string) {
			for msg := range msgs {
				logger.Info("repair event",
					"topic", topic,
					"event_id", msg.UUID,
					"payload", string(msg.Payload),
				)
				msg.Ack()
			}
		}(topic)
	}
	return nil
}
