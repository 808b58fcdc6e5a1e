package service

import (
	"encoding/json"

	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IEventPublisher puts domain events on the in-process bus. Publishing is
// best effort everywhere: a broken bus never fails a user-facing flow.
type IEventPublisher interface {
	Publish(event events.Event)
}

type eventPublisher struct {
	pubSub *gochannel.GoChannel
	topic  string
	logger logger.ILogger
}

func NewEventPublisher(pubSub *gochannel.GoChannel, topic string, log logger.ILogger) IEventPublisher {
	return &eventPublisher{
		pubSub: pubSub,
		topic:  topic,
		logger: log,
	}
}

func (p *eventPublisher) Publish(event events.Event) {
	payload, err := json.Marshal(events.Envelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		p.logger.Warn("EventPublisher", "Failed to marshal event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(p.topic, msg); err != nil {
		p.logger.Warn("EventPublisher", "Failed to publish event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
	}
}
