package natsadapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/pkg/metrics"
)

// Subjects and streams.
const (
	LookupSubjectPrefix = "location.lookup."
	LookupSubjects      = "location.lookup.>"
	ReloadSubject       = "datasets.reload"

	lookupStream  = "LOCATION_LOOKUPS"
	datasetStream = "DATASET_EVENTS"
)

// ReloadRequest is the payload of ReloadSubject.
type ReloadRequest struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	enc  Encoding
}

// NewPublisher connects to NATS, enables JetStream and ensures the streams exist.
func NewPublisher(url string, enc Encoding) (*Publisher, error) {
	conn, err := RawConn(url, "locationwizard-publisher")
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	streams := []nats.StreamConfig{
		{
			Name:      lookupStream,
			Subjects:  []string{LookupSubjects},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      datasetStream,
			Subjects:  []string{"datasets.>"},
			Retention: nats.LimitsPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js, enc: enc}, nil
}

// LookupSubject returns the subject a lookup in zone is published on.
// Characters that cannot appear in a subject token become "_".
func LookupSubject(zone string) string {
	z := strings.Map(func(r rune) rune {
		if r <= ' ' || r == '.' || r == '*' || r == '>' || r == 0x7f {
			return '_'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(zone)))
	if z == "" {
		z = "unknown"
	}
	return LookupSubjectPrefix + z
}

// PublishLookup publishes event on the subject of its seismic zone.
func (p *Publisher) PublishLookup(ctx context.Context, event *domain.LookupEvent) error {
	err := p.publish(ctx, LookupSubject(event.Result.SeismicZone), event)
	metrics.EventsPublished.WithLabelValues("lookup", metrics.Result(err)).Inc()
	return err
}

// PublishDatasetReload asks every API instance to reload its zone datasets.
func (p *Publisher) PublishDatasetReload(ctx context.Context, reason string) error {
	err := p.publish(ctx, ReloadSubject, ReloadRequest{Reason: reason, RequestedAt: time.Now().UTC()})
	metrics.EventsPublished.WithLabelValues("reload", metrics.Result(err)).Inc()
	return err
}

func (p *Publisher) publish(ctx context.Context, subject string, v any) error {
	msg, err := encodeMsg(p.enc, subject, v)
	if err != nil {
		return err
	}
	if _, err := p.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url, name string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// DecodeLookupEvent decodes a message published by PublishLookup.
func DecodeLookupEvent(msg *nats.Msg) (*domain.LookupEvent, error) {
	var event domain.LookupEvent
	if err := decodeMsg(msg, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
