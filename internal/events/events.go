// Package events carries domain events between the daily log writer and the
// notification consumer.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const TypePointsAwarded = "points.awarded"

type Envelope struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    datatypes.JSON `json:"payload"`
}

// PointsAwarded is published after a daily log commit.
type PointsAwarded struct {
	TempleCode   string `json:"temple_code"`
	Day          string `json:"day"`
	Points       int64  `json:"points"`
	Delta        int64  `json:"delta"`
	TemplePoints int64  `json:"temple_points"`
	Overwrote    bool   `json:"overwrote"`
	CollectedBy  string `json:"collected_by"`
}

func NewEnvelope(typ string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Envelope{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    datatypes.JSON(raw),
	}, nil
}

func (e Envelope) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, key string, env Envelope) error
	Close() error
}

// Handler processes one envelope. Returning an error leaves the message
// uncommitted.
type Handler func(ctx context.Context, env Envelope) error

type nopPublisher struct{}

// NopPublisher drops every event. Used when no brokers are configured.
func NopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, string, Envelope) error { return nil }
func (nopPublisher) Close() error                                    { return nil }
