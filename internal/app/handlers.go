package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trendpulse/internal/adapter/events"
	"trendpulse/internal/adapter/storage"
	"trendpulse/internal/domain/report"
	"trendpulse/internal/logging"
	"trendpulse/internal/service/pipeline"
	"trendpulse/internal/service/publishing"
)

// ResultSaver persists a successful result
type ResultSaver interface {
	SaveResult(ctx context.Context, r *report.Result) error
}

// EventPublisher emits run events
type EventPublisher interface {
	Publish(ev events.Event) error
}

// PersistHandler stores every successful result
func PersistHandler(store ResultSaver) pipeline.OutcomeHandler {
	return func(ctx context.Context, o pipeline.Outcome) error {
		if o.Result == nil {
			return nil
		}
		if err := store.SaveResult(ctx, o.Result); err != nil {
			return fmt.Errorf("persist result: %w", err)
		}
		return nil
	}
}

// SnapshotHandler rewrites the CSV table after every successful run
func SnapshotHandler(path string) pipeline.OutcomeHandler {
	return func(ctx context.Context, o pipeline.Outcome) error {
		if o.Result == nil {
			return nil
		}
		return storage.SaveTable(path, o.Result.Rows)
	}
}

// EventHandler publishes one event per run, including empty and failed runs
func EventHandler(bus EventPublisher, hashtag string) pipeline.OutcomeHandler {
	return func(ctx context.Context, o pipeline.Outcome) error {
		var message string
		if o.Result != nil {
			message = pipeline.FormatMessage(o.Result.Top, hashtag)
		}
		return bus.Publish(events.RunEvent(o.Result, o.Err, message, o.At))
	}
}

// PostHandler announces the top trend of every successful run. Empty and
// failed runs post nothing. bus may be nil.
func PostHandler(announcer *publishing.Announcer, hashtag string, bus EventPublisher, log *zap.Logger) pipeline.OutcomeHandler {
	log = logging.OrNop(log)

	return func(ctx context.Context, o pipeline.Outcome) error {
		if o.Result == nil {
			if o.Empty() {
				log.Info("Nothing to post", zap.String("reason", report.ErrEmptyResult.Error()))
			}
			return nil
		}

		message := pipeline.FormatMessage(o.Result.Top, hashtag)
		for _, receipt := range announcer.Announce(ctx, message) {
			if !receipt.OK() || bus == nil {
				continue
			}
			ev := events.PublishedEvent(o.Result.RunID, receipt.Platform, receipt.PostID, time.Now())
			if err := bus.Publish(ev); err != nil {
				log.Warn("Failed to publish post event", zap.Error(err))
			}
		}
		return nil
	}
}
