package events

import (
	"context"
	"fmt"
	"time"

	"farmacia-catalogo/internal/domain"
	"farmacia-catalogo/internal/metrics"
	"farmacia-catalogo/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/goccy/go-json"
)

// SQSAPI is the subset of *sqs.Client used for publishing.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends catalog events to one queue. A nil *SQSPublisher is a
// valid, disabled publisher.
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
	attempts int
	backoff  time.Duration
}

func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	if client == nil || queueURL == "" {
		logger.Warn().Msg("SQS_QUEUE_URL not configured. Catalog events disabled.")
		return nil
	}
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		attempts: 3,
		backoff:  200 * time.Millisecond,
	}
}

func NewClient(cfg aws.Config) *sqs.Client {
	return sqs.NewFromConfig(cfg)
}

// Publish sends one event, retrying transient failures a few times.
func (p *SQSPublisher) Publish(ctx context.Context, event domain.ProductEvent) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"tipo":      {DataType: aws.String("String"), StringValue: aws.String(event.Type)},
			"tenant_id": {DataType: aws.String("String"), StringValue: aws.String(event.TenantID)},
		},
	}

	var lastErr error
	for i := 0; i < p.attempts; i++ {
		if _, err := p.client.SendMessage(ctx, input); err != nil {
			lastErr = fmt.Errorf("failed to send message to SQS: %w", err)
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(time.Duration(i+1) * p.backoff):
			}
			continue
		}
		metrics.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
		return nil
	}

	metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
	return lastErr
}

// PublishAsync sends the event in the background. The request context is
// detached so the send outlives the response.
func PublishAsync(ctx context.Context, pub domain.EventPublisher, event domain.ProductEvent) {
	if pub == nil {
		return
	}
	l := logger.WithContext(ctx)
	ctx = context.WithoutCancel(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := pub.Publish(sendCtx, event); err != nil {
			l.Warn().Err(err).
				Str("tipo", event.Type).
				Str("tenant_id", event.TenantID).
				Str("codigo", event.Codigo).
				Msg("Failed to publish catalog event")
		}
	}()
}
