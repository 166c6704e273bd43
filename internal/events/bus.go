package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/bme-bharat/communityfeed/internal/logging"
	"github.com/bme-bharat/communityfeed/internal/models"
)

const feedEventsTopic = "feed.events"

// Bus is an in-process publish/subscribe channel for feed mutation events.
// It is an explicit dependency: every scope that needs events gets a Bus
// injected rather than reaching for a package-level singleton.
//
// All events travel on a single topic, and each publish blocks until every
// subscriber has accepted the message, so every subscriber observes events
// in publish order.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *logging.Logger
}

// NewBus creates an in-process bus.
func NewBus(logger *logging.Logger) *Bus {
	// BlockPublishUntilSubscriberAck serializes delivery: without it the
	// gochannel hands each message to a subscriber on its own goroutine and
	// arrival order is lost.
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            64,
		BlockPublishUntilSubscriberAck: true,
	}, watermillAdapter{logger: logger})

	return &Bus{pubsub: pubsub, logger: logger}
}

// Publish broadcasts one event to every current subscriber.
func (b *Bus) Publish(ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %q: %w", ev.Kind, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	return b.pubsub.Publish(feedEventsTopic, msg)
}

// Subscribe returns a channel of events delivered in publish order. The
// channel closes when ctx is canceled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan models.Event, error) {
	msgs, err := b.pubsub.Subscribe(ctx, feedEventsTopic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %q: %w", feedEventsTopic, err)
	}

	out := make(chan models.Event, 64)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev models.Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Warn("Dropping undecodable event", logging.WithField("error", err.Error()))
				msg.Ack()
				continue
			}

			// Ack before forwarding: publishes block until every subscriber
			// acks, so a consumer that has not drained out yet must not hold
			// the ack hostage. The buffered channel keeps arrival order.
			msg.Ack()

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close shuts the bus down; all subscriber channels close.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// watermillAdapter bridges watermill's logger interface onto ours.
type watermillAdapter struct {
	logger *logging.Logger
	fields watermill.LogFields
}

func (a watermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	merged := a.merge(fields)
	if err != nil {
		merged["error"] = err.Error()
	}
	a.logger.Error(msg, merged)
}

func (a watermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, a.merge(fields))
}

func (a watermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, a.merge(fields))
}

func (a watermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, a.merge(fields))
}

func (a watermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillAdapter{logger: a.logger, fields: a.fields.Add(fields)}
}

func (a watermillAdapter) merge(fields watermill.LogFields) logging.Fields {
	merged := make(map[string]interface{}, len(a.fields)+len(fields))
	for k, v := range a.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return logging.WithFields(merged)
}
