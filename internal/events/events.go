// Package events broadcasts article lifecycle events to NATS subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Kind names an event type.
type Kind string

const (
	KindUnpublished Kind = "article.unpublished"
	KindRolledBack  Kind = "article.rolled_back"
	KindRescheduled Kind = "article.rescheduled"
)

// Event is the JSON payload placed on the subject.
type Event struct {
	Kind  Kind   `json:"kind"`
	RunID string `json:"run_id,omitempty"`
	Slug  string `json:"slug"`
	Title string `json:"title,omitempty"`
	File  string `json:"file,omitempty"`
	URL   string `json:"url,omitempty"`
	// Fingerprint is the article content hash; publish state changes leave it unchanged.
	Fingerprint string    `json:"fingerprint,omitempty"`
	Failures    int       `json:"failures,omitempty"`
	Slot        string    `json:"slot,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher sends events. Implementations must be safe for sequential use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// NATSPublisher publishes events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// Connect dials url. An empty url yields Noop.
func Connect(url, subject string, opts ...nats.Option) (Publisher, error) {
	if url == "" {
		return Noop{}, nil
	}
	if subject == "" {
		return nil, fmt.Errorf("events subject is required")
	}
	opts = append([]nats.Option{nats.Name("zennpub"), nats.Timeout(5 * time.Second)}, opts...)
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS client initialized for article events", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Subject of the events.
func (p *NATSPublisher) Subject() string { return p.subject }

// Publish marshals ev and flushes it so the broker has it before return.
func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", ev.Kind, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

type stamped struct {
	Publisher
	runID string
}

// WithRunID wraps p so every event carries runID.
func WithRunID(p Publisher, runID string) Publisher {
	return stamped{Publisher: p, runID: runID}
}

func (s stamped) Publish(ctx context.Context, ev Event) error {
	if ev.RunID == "" {
		ev.RunID = s.runID
	}
	return s.Publisher.Publish(ctx, ev)
}
