package events

import (
	"context"
	"encoding/json"

	"comart-backend/aws"
	"comart-backend/models"
	"comart-backend/services"

	"go.uber.org/zap"
)

// SNSOrderPublisher mirrors order events onto an SNS topic for consumers
// outside the Kafka cluster (email workers, mobile push).
type SNSOrderPublisher struct {
	sns      aws.SNSPublisher
	topicArn string
}

// NewSNSOrderPublisher creates an SNSOrderPublisher.
func NewSNSOrderPublisher(sns aws.SNSPublisher, topicArn string) *SNSOrderPublisher {
	return &SNSOrderPublisher{sns: sns, topicArn: topicArn}
}

// PublishOrderEvent sends the event as JSON to the configured topic.
func (p *SNSOrderPublisher) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.sns.Publish(ctx, p.topicArn, payload)
}

// Fanout publishes each event to every sink. Sinks fail independently; the
// first error is returned after all sinks have been tried.
type Fanout struct {
	sinks  []services.EventPublisher
	logger *zap.Logger
}

// NewFanout creates a Fanout over the given sinks.
func NewFanout(logger *zap.Logger, sinks ...services.EventPublisher) *Fanout {
	return &Fanout{sinks: sinks, logger: logger}
}

// PublishOrderEvent delivers the event to all sinks.
func (f *Fanout) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	var firstErr error
	for _, sink := range f.sinks {
		if err := sink.PublishOrderEvent(ctx, event); err != nil {
			f.logger.Warn("Event sink failed",
				zap.String("event_type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
