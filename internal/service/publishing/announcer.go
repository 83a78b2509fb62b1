// Package publishing fans a rendered message out to every configured
// platform.
package publishing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"trendpulse/internal/domain/publication"
	"trendpulse/internal/logging"
	"trendpulse/internal/metrics"
)

// Receipt is the result of posting to one platform
type Receipt struct {
	Platform string    `json:"platform"`
	PostID   string    `json:"post_id,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// OK reports whether the post succeeded
func (r Receipt) OK() bool {
	return r.Error == ""
}

// Announcer posts to every publisher. A failing platform never blocks the
// others.
type Announcer struct {
	publishers []publication.Publisher
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewAnnouncer creates a new announcer
func NewAnnouncer(publishers []publication.Publisher, log *zap.Logger, m *metrics.Metrics) *Announcer {
	return &Announcer{
		publishers: publishers,
		log:        logging.OrNop(log).With(zap.String("component", "announcer")),
		metrics:    m,
	}
}

// Platforms lists the configured platform names
func (a *Announcer) Platforms() []string {
	names := make([]string, len(a.publishers))
	for i, p := range a.publishers {
		names[i] = p.Name()
	}
	return names
}

// Announce posts message everywhere and returns one receipt per publisher
func (a *Announcer) Announce(ctx context.Context, message string) []Receipt {
	receipts := make([]Receipt, 0, len(a.publishers))

	for _, p := range a.publishers {
		id, err := p.Publish(ctx, message)
		r := Receipt{Platform: p.Name(), PostID: id, At: time.Now()}

		if err != nil {
			r.Error = err.Error()
			a.metrics.Published(p.Name(), "error")
			a.log.Error("Failed to publish", zap.String("platform", p.Name()), zap.Error(err))
		} else {
			a.metrics.Published(p.Name(), "ok")
			a.log.Info("Published trend", zap.String("platform", p.Name()), zap.String("post_id", id))
		}
		receipts = append(receipts, r)
	}

	return receipts
}
