package events

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/oneroomhq/oneroom-backend/pkg/enums"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

// Consumer drains the room-events subscription and feeds envelopes to the
// router. Delivery is best effort: failed events are logged and acked, never
// redelivered by this service.
type Consumer struct {
	subscription *pubsub.Subscriber
	router       *Router
	log          *logger.Logger
}

// NewConsumer builds a room events consumer.
func NewConsumer(subscription *pubsub.Subscriber, router *Router, log *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, errors.New("subscription is required")
	}
	if router == nil {
		return nil, errors.New("router is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{subscription: subscription, router: router, log: log}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes[AttrEventType]
	logCtx := c.log.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseRoomEventType(rawType)
	if err != nil {
		c.log.Info(logCtx, "skipping unsupported event")
		return processResult{ack: true}
	}

	var envelope Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.log.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	envelope.EventType = eventType

	if err := c.router.Handle(logCtx, envelope); err != nil {
		// Redeliver only when shutdown interrupted the handling; every
		// other failure is accepted as a dropped notification.
		if ctx.Err() != nil {
			return processResult{nack: true}
		}
		c.log.Error(logCtx, "event handling failed", err)
	}
	return processResult{ack: true}
}
