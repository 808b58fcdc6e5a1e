package service

import (
	"context"
	"encoding/json"

	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/events"
	pkgNats "ai-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process event bus and mirrors each event to
// the NATS stream for external consumers. The mirror is best effort, events
// are acked regardless so a NATS outage never backs up the bus.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	publisher *pkgNats.Publisher
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	publisher *pkgNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		publisher: publisher,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var envelope events.Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.logger.Warn("ConsumerService", "Dropping malformed event payload", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	if cs.publisher == nil {
		return
	}
	if err := cs.publisher.Publish(ctx, envelope.ToEvent()); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to mirror event to NATS", map[string]interface{}{
			"type":  envelope.Type,
			"error": err.Error(),
		})
	}
}
