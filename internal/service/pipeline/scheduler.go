// internal/service/pipeline/scheduler.go

package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"trendpulse/internal/domain/report"
	"trendpulse/internal/domain/trend"
	"trendpulse/internal/logging"
)

// Runner executes a single pipeline pass
type Runner interface {
	Run(ctx context.Context, keywords []trend.Keyword, opts trend.FetchOptions) (*report.Result, error)
}

// Outcome is the result of one scheduled run. Exactly one of Result and
// Err is set.
type Outcome struct {
	Result *report.Result
	Err    error
	At     time.Time
}

// Empty reports whether the run found no data
func (o Outcome) Empty() bool {
	return errors.Is(o.Err, report.ErrEmptyResult)
}

// OutcomeHandler reacts to a finished run (persist, publish, notify)
type OutcomeHandler func(ctx context.Context, o Outcome) error

// SchedulerConfig contains configuration for the scheduler
type SchedulerConfig struct {
	Keywords   []trend.Keyword
	Fetch      trend.FetchOptions
	Interval   time.Duration
	RunOnStart bool
}

// Scheduler runs the pipeline periodically and fans outcomes out to
// registered handlers
type Scheduler struct {
	runner   Runner
	config   SchedulerConfig
	log      *zap.Logger
	handlers []OutcomeHandler
	latest   *report.Result
	mu       sync.RWMutex
	runMu    sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(runner Runner, config SchedulerConfig, log *zap.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		config: config,
		log:    logging.OrNop(log).With(zap.String("component", "scheduler")),
	}
}

// RegisterHandler registers a callback invoked after every run
func (s *Scheduler) RegisterHandler(handler OutcomeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers = append(s.handlers, handler)
}

// Start begins the periodic loop
func (s *Scheduler) Start(ctx context.Context) error {
	if s.config.Interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
			s.log.Info("Next run scheduled", zap.Duration("in", s.config.Interval))
		}
	}
}

// RunOnce executes the pipeline now and dispatches the outcome. Concurrent
// calls are serialized.
func (s *Scheduler) RunOnce(ctx context.Context) Outcome {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	result, err := s.runner.Run(ctx, s.config.Keywords, s.config.Fetch)
	outcome := Outcome{Result: result, Err: err, At: time.Now()}

	switch {
	case err == nil:
		s.mu.Lock()
		s.latest = result
		s.mu.Unlock()
	case outcome.Empty():
		s.log.Warn("No data available, try again later")
	default:
		s.log.Error("Pipeline run failed", zap.Error(err))
	}

	s.callHandlers(ctx, outcome)
	return outcome
}

// Latest returns the most recent successful result
func (s *Scheduler) Latest() (*report.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest, s.latest != nil
}

// Seed sets the latest result before the first run, e.g. from storage.
// It does nothing once a run has succeeded.
func (s *Scheduler) Seed(result *report.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		s.latest = result
	}
}

func (s *Scheduler) callHandlers(ctx context.Context, o Outcome) {
	s.mu.RLock()
	handlers := make([]OutcomeHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, o); err != nil {
			s.log.Error("Outcome handler failed", zap.Error(err))
		}
	}
}

// Stop cancels the loop and waits for an in-flight run within ctx's deadline
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	c := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
