// Command trendbot runs the pipeline once, or ranks a stored table, and
// prints or posts the resulting message.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"trendpulse/internal/adapter/social"
	"trendpulse/internal/adapter/storage"
	"trendpulse/internal/app"
	"trendpulse/internal/config"
	"trendpulse/internal/domain/publication"
	"trendpulse/internal/domain/report"
	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/logging"
	"trendpulse/internal/service/pipeline"
	"trendpulse/internal/service/publishing"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

type options struct {
	keywords  string
	strategy  string
	table     string
	fromTable string
	hashtag   string
	publish   bool
}

func main() {
	opts := options{}
	flag.StringVar(&opts.keywords, "keywords", "", "Comma separated keywords (overrides TRENDS_KEYWORDS)")
	flag.StringVar(&opts.strategy, "strategy", "", "Sentiment strategy: lexical or model (overrides SENTIMENT_STRATEGY)")
	flag.StringVar(&opts.table, "table", "", "Write the joined table to this CSV path")
	flag.StringVar(&opts.fromTable, "from-table", "", "Rank a stored CSV table instead of fetching")
	flag.StringVar(&opts.hashtag, "hashtag", "", "Hashtag closing the message")
	flag.BoolVar(&opts.publish, "publish", false, "Post the message to the configured platforms")
	flag.Parse()

	if opts.keywords != "" {
		os.Setenv("TRENDS_KEYWORDS", opts.keywords)
	}
	if opts.strategy != "" {
		os.Setenv("SENTIMENT_STRATEGY", opts.strategy)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		os.Exit(exitConfig)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, opts, os.Stdout, logger)
	stop()
	logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer, logger *zap.Logger) int {
	logger = logging.OrNop(logger)
	hashtag := opts.hashtag
	if hashtag == "" {
		hashtag = cfg.Publisher.Hashtag
	}

	top, err := selectTop(ctx, cfg, opts, logger)
	switch {
	case errors.Is(err, report.ErrEmptyResult):
		fmt.Fprintln(out, "No data available. Please try again later.")
		return exitOK
	case errors.Is(err, sentiment.ErrConfiguration):
		logger.Error("Invalid sentiment configuration", zap.Error(err))
		return exitConfig
	case err != nil:
		logger.Error("Run failed", zap.Error(err))
		return exitFailed
	}

	message := pipeline.FormatMessage(top, hashtag)

	publishers := []publication.Publisher{social.NewConsole(out)}
	if opts.publish {
		remote, err := app.NewPublishers(cfg.Publisher, logger)
		if err != nil {
			logger.Error("Failed to create publishers", zap.Error(err))
			return exitConfig
		}
		if len(remote) == 0 {
			logger.Error("No publishing platform is configured")
			return exitConfig
		}
		publishers = append(publishers, remote...)
	}

	failed := false
	for _, r := range publishing.NewAnnouncer(publishers, logger, nil).Announce(ctx, message) {
		if !r.OK() {
			failed = true
		}
	}
	if failed {
		return exitFailed
	}
	return exitOK
}

func selectTop(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger) (report.RankedTrend, error) {
	if opts.fromTable != "" {
		rows, dropped, err := storage.LoadTable(opts.fromTable, logger)
		if err != nil {
			return report.RankedTrend{}, err
		}
		if dropped > 0 {
			logger.Warn("Dropped malformed table rows", zap.Int("count", dropped))
		}
		return pipeline.TopFromTable(rows)
	}

	rdb, err := app.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Classification cache disabled", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	orchestrator, err := app.NewOrchestrator(ctx, cfg, rdb, logger, nil)
	if err != nil {
		return report.RankedTrend{}, err
	}

	logger.Info("Fetching trends", zap.String("keywords", strings.Join(cfg.Keywords(), ", ")))
	result, err := orchestrator.Run(ctx, app.Keywords(cfg), app.FetchOptions(cfg.Trends))
	if err != nil {
		return report.RankedTrend{}, err
	}

	if opts.table != "" {
		if err := storage.SaveTable(opts.table, result.Rows); err != nil {
			return report.RankedTrend{}, err
		}
		logger.Info("Table written", zap.String("path", opts.table), zap.Int("rows", len(result.Rows)))
	}

	return result.Top, nil
}
