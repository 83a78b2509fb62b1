// internal/adapter/events/nats.go

// Package events publishes pipeline run events on NATS and relays them to
// live subscribers.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"trendpulse/internal/domain/report"
	"trendpulse/internal/logging"
)

// Event types
const (
	TypeRunCompleted = "run.completed"
	TypeRunEmpty     = "run.empty"
	TypeRunFailed    = "run.failed"
	TypePublished    = "published"
)

// Event is the payload of every subject under the bus prefix
type Event struct {
	Type     string              `json:"type"`
	RunID    string              `json:"run_id,omitempty"`
	Time     time.Time           `json:"time"`
	Top      *report.RankedTrend `json:"top,omitempty"`
	Message  string              `json:"message,omitempty"`
	Platform string              `json:"platform,omitempty"`
	PostID   string              `json:"post_id,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// RunEvent describes the outcome of one pipeline run
func RunEvent(result *report.Result, runErr error, message string, at time.Time) Event {
	switch {
	case runErr == nil && result != nil:
		top := result.Top
		return Event{Type: TypeRunCompleted, RunID: result.RunID, Time: at, Top: &top, Message: message}
	case errors.Is(runErr, report.ErrEmptyResult):
		return Event{Type: TypeRunEmpty, Time: at, Error: report.ErrEmptyResult.Error()}
	default:
		ev := Event{Type: TypeRunFailed, Time: at}
		if runErr != nil {
			ev.Error = runErr.Error()
		}
		return ev
	}
}

// PublishedEvent describes a post made on one platform
func PublishedEvent(runID, platform, postID string, at time.Time) Event {
	return Event{Type: TypePublished, RunID: runID, Time: at, Platform: platform, PostID: postID}
}

// Bus publishes and subscribes to events under one subject prefix
type Bus struct {
	conn   *nats.Conn
	prefix string
	log    *zap.Logger
}

// NewBus creates a bus on an established connection
func NewBus(conn *nats.Conn, prefix string, log *zap.Logger) *Bus {
	if prefix == "" {
		prefix = "trends"
	}
	return &Bus{
		conn:   conn,
		prefix: prefix,
		log:    logging.OrNop(log).With(zap.String("component", "events")),
	}
}

// Subject returns the subject an event type is published on
func (b *Bus) Subject(eventType string) string {
	return b.prefix + "." + eventType
}

// Publish sends ev on its type's subject
func (b *Bus) Publish(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	if err := b.conn.Publish(b.Subject(ev.Type), data); err != nil {
		return fmt.Errorf("error publishing event: %w", err)
	}

	b.log.Debug("Published event", zap.String("type", ev.Type), zap.String("run_id", ev.RunID))
	return nil
}

// Subscribe delivers the raw payload of every event under the prefix. The
// returned function removes the subscription.
func (b *Bus) Subscribe(fn func(data []byte)) (func(), error) {
	sub, err := b.conn.Subscribe(b.prefix+".>", func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to events: %w", err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			b.log.Warn("Failed to unsubscribe", zap.Error(err))
		}
	}, nil
}

// ConnectConfig holds NATS connection settings
type ConnectConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// Connect dials NATS with reconnect handlers that log through log
func Connect(cfg ConnectConfig, log *zap.Logger) (*nats.Conn, error) {
	log = logging.OrNop(log).With(zap.String("component", "nats"))

	options := []nats.Option{
		nats.Name("trendpulse"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
