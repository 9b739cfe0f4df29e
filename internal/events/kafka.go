package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: []kafka.Header{{Key: "type", Value: []byte(env.Type)}},
		Time:    env.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", env.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

type KafkaConsumer struct {
	reader *kafka.Reader
	log    *zap.SugaredLogger
}

func NewKafkaConsumer(brokers []string, topic, groupID string, log *zap.SugaredLogger) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		log: log.With("service", "KafkaConsumer", "topic", topic),
	}
}

// Run fetches until ctx is cancelled. A message is committed only after h
// succeeds; malformed messages are committed and skipped.
func (c *KafkaConsumer) Run(ctx context.Context, h Handler) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		var env Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			c.log.Warnw("skipping malformed message", "offset", m.Offset, "err", err)
		} else if err := h(ctx, env); err != nil {
			c.log.Errorw("handler failed, leaving message uncommitted", "event_id", env.ID, "type", env.Type, "err", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.log.Errorw("commit failed", "offset", m.Offset, "err", err)
		}
	}
}
