package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sharath018/idea-factory-backend/utils"
)

// Publisher emits catalog events. Publishing is best effort: callers log
// failures and carry on, the catalog write has already committed.
type Publisher interface {
	Publish(ctx context.Context, evt CatalogEvent) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer used by the publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(w MessageWriter) Publisher {
	return &kafkaPublisher{writer: w}
}

func (p *kafkaPublisher) Publish(ctx context.Context, evt CatalogEvent) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode catalog event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Key()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(evt.Type)},
		},
	})
}

func (p *kafkaPublisher) Close() error { return p.writer.Close() }

// localPublisher hands events straight to the service on a goroutine, for
// deployments without a broker.
type localPublisher struct {
	svc Service
	log *utils.Logger
}

func NewLocalPublisher(svc Service, log *utils.Logger) Publisher {
	return &localPublisher{svc: svc, log: log}
}

func (p *localPublisher) Publish(ctx context.Context, evt CatalogEvent) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	go func(ctx context.Context) {
		if err := p.svc.HandleEvent(ctx, evt); err != nil {
			p.log.Error("catalog event handling failed", "type", evt.Type, "error", err)
		}
	}(context.WithoutCancel(ctx))
	return nil
}

func (p *localPublisher) Close() error { return nil }

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CatalogEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }

// MessageReader is the subset of *kafka.Reader used by the consumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StartConsumer reads catalog events until ctx is cancelled. Undecodable
// messages are committed and skipped; handling failures are logged and the
// message is committed so one bad event cannot stall the group.
func StartConsumer(ctx context.Context, reader MessageReader, svc Service, log *utils.Logger) {
	log.Info("catalog consumer started")
	defer func() {
		if err := reader.Close(); err != nil {
			log.Warn("catalog reader close failed", "error", err)
		}
		log.Info("catalog consumer stopped")
	}()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.Error("catalog fetch failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		var evt CatalogEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			log.Warn("skipping undecodable catalog event", "offset", msg.Offset, "error", err)
		} else if err := svc.HandleEvent(ctx, evt); err != nil {
			log.Error("catalog event handling failed", "type", evt.Type, "offset", msg.Offset, "error", err)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Warn("catalog commit failed", "offset", msg.Offset, "error", err)
		}
	}
}
