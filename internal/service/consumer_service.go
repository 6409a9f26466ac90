package service

import (
	"context"
	"encoding/json"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/pkg/events"
	pktNats "ai-research-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process lifecycle topic and mirrors each
// message onto NATS. It is the only component talking to the external
// bus, so a NATS outage degrades observability but never a running job.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	natsPublisher *pktNats.Publisher
	logger        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		natsPublisher: natsPublisher,
		logger:        log,
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
	var payload dto.ResearchEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal lifecycle message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.natsPublisher == nil {
		msg.Ack()
		return
	}

	evt := events.BaseEvent{
		Type: payload.EventType,
		Data: map[string]interface{}{
			"job_id":      payload.JobID,
			"query":       payload.Query,
			"report_type": payload.ReportType,
			"error":       payload.Error,
		},
		OccurredAt: payload.OccurredAt,
	}

	if err := cs.natsPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to mirror event to NATS", map[string]interface{}{
			"event": payload.EventType,
			"error": err.Error(),
		})
		// Mirroring is best-effort; do not retry forever.
	}

	msg.Ack()
}
