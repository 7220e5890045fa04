package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bruteforce-framework/bruteforce/internal/core/algorithm"
	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
	"github.com/bruteforce-framework/bruteforce/internal/pkg/concurrency"
	"github.com/bruteforce-framework/bruteforce/internal/pkg/metrics"
	"github.com/bruteforce-framework/bruteforce/internal/port"
)

const (
	MetricsUpdateInterval = time.Second
	ProgressLabel         = "Cracking"
	reportCategory        = "search"
)

// SearchService runs one search at a time: a single producer feeds the
// candidate source into a queue, a fixed worker pool drains it, and the
// first worker to find a match ends the search for everyone.
type SearchService struct {
	hashService port.HashService
	logger      zerolog.Logger
	collector   *metrics.Collector
	metrics     *metrics.SearchMetrics
	sink        port.ResultSink
	progressOut io.Writer
	idleWait    time.Duration

	state   *SearchState
	busy    atomic.Bool
	current atomic.Pointer[activeRun]

	mu   sync.Mutex
	stop context.CancelFunc
}

// activeRun identifies the search whose workers are currently started.
type activeRun struct {
	id   string
	pool *concurrency.WorkerPool
}

// Option configures a SearchService.
type Option func(*SearchService)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *SearchService) {
		s.logger = logger
	}
}

// WithProgressOutput enables the progress line, redrawn on w.
func WithProgressOutput(w io.Writer) Option {
	return func(s *SearchService) {
		s.progressOut = w
	}
}

func WithMetrics(m *metrics.SearchMetrics) Option {
	return func(s *SearchService) {
		s.metrics = m
	}
}

// WithResultSink records every finished search on sink.
func WithResultSink(sink port.ResultSink) Option {
	return func(s *SearchService) {
		s.sink = sink
	}
}

func WithCollector(c *metrics.Collector) Option {
	return func(s *SearchService) {
		s.collector = c
	}
}

// WithIdleWait sets how long a worker waits on an empty queue.
func WithIdleWait(d time.Duration) Option {
	return func(s *SearchService) {
		s.idleWait = d
	}
}

func NewSearchService(hashService port.HashService, opts ...Option) *SearchService {
	s := &SearchService{
		hashService: hashService,
		logger:      zerolog.Nop(),
		idleWait:    concurrency.DefaultIdleWait,
		state:       NewSearchState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.collector == nil {
		s.collector = metrics.NewCollector(MetricsUpdateInterval)
	}
	s.logger = s.logger.With().Str("component", "search").Logger()
	return s
}

var _ port.SearchService = (*SearchService)(nil)

// Run executes one search and blocks until it reaches a terminal status.
// Configuration problems are returned as errors before anything starts;
// exhaustion and cancellation are normal results.
func (s *SearchService) Run(ctx context.Context, cfg domain.SearchConfig) (*domain.SearchResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrSearchRunning
	}
	defer s.busy.Store(false)

	cfg, err := s.prepare(cfg)
	if err != nil {
		return nil, err
	}
	source, err := algorithm.NewSource(cfg)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With().
		Str("run_id", runID).
		Str("mode", string(cfg.Mode)).
		Str("algorithm", string(cfg.HashType)).
		Logger()

	// stop is published before the state reads Running, so a Cancel that
	// observes Running always reaches this run.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	s.setStop(stop)
	defer s.setStop(nil)
	s.state.reset()

	queue := concurrency.NewQueue(cfg.QueueCapacity)
	pool := concurrency.NewWorkerPool(cfg.Workers)
	pool.SetIdleWait(s.idleWait)

	start := time.Now()
	s.collector.StartCollection(runID)
	if s.metrics != nil {
		s.metrics.SearchStarted(pool.Size())
	}
	logger.Info().
		Int("workers", pool.Size()).
		Uint64("total", source.Total()).
		Msg("search started")

	g, gctx := errgroup.WithContext(runCtx)

	// Cancellation of the caller's context ends a running search.
	g.Go(func() error {
		<-gctx.Done()
		s.state.Cancel()
		return nil
	})

	var warnings []string
	g.Go(func() error {
		defer queue.Close()
		warnings = s.produce(gctx, source, queue, logger)
		return nil
	})

	if s.progressOut != nil {
		reporter := metrics.NewProgressReporter(s.progressOut, ProgressLabel, source.Total(), cfg.ProgressInterval)
		g.Go(func() error {
			if err := reporter.Run(gctx, s.state); err != nil {
				logger.Debug().Err(err).Msg("progress output failed")
			}
			return nil
		})
	}

	target := cfg.TargetHash
	pool.Start(runCtx, queue, s.state.Active, func(workerID int, candidate string) {
		s.state.AddAttempt()
		if !s.hashService.Verify(candidate, target, cfg.HashType) {
			return
		}
		if s.state.CommitMatch(candidate) {
			logger.Debug().Int("worker", workerID).Msg("match committed")
			stop()
		}
	})

	s.current.Store(&activeRun{id: runID, pool: pool})

	pool.Wait()
	s.current.Store(nil)
	if runCtx.Err() != nil {
		s.state.Cancel()
	} else {
		s.state.Finish()
	}
	stop()
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("search supervisor failed")
	}

	snap := s.state.Snapshot()
	s.collector.UpdateAttempts(runID, int64(snap.Attempts), pool.Size())

	result := &domain.SearchResult{
		RunID:     runID,
		Mode:      cfg.Mode,
		HashType:  cfg.HashType,
		Status:    snap.Status,
		Found:     snap.Found,
		Password:  snap.Result,
		Attempts:  snap.Attempts,
		Total:     source.Total(),
		Elapsed:   time.Since(start),
		StartTime: start,
		Warnings:  warnings,
		Metrics:   s.collector.StopCollection(runID),
	}
	s.record(result, logger)

	logger.Info().
		Str("status", string(result.Status)).
		Uint64("attempts", result.Attempts).
		Dur("elapsed", result.Elapsed).
		Ints64("per_worker", pool.WorkerCompleted()).
		Msg("search finished")

	return result, nil
}

// prepare validates cfg and fills the algorithm and defaults the search
// needs. The caller's value is not modified.
func (s *SearchService) prepare(cfg domain.SearchConfig) (domain.SearchConfig, error) {
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.TargetHash = strings.ToLower(strings.TrimSpace(cfg.TargetHash))
	cfg.HashType = domain.HashType(strings.ToLower(strings.TrimSpace(string(cfg.HashType))))
	if cfg.HashType == "" {
		cfg.HashType = s.hashService.Identify(cfg.TargetHash)
		if cfg.HashType == "" {
			return cfg, &domain.ConfigError{
				Field:  "algorithm",
				Reason: fmt.Sprintf("cannot infer algorithm from a %d character target", len(cfg.TargetHash)),
				Err:    domain.ErrInvalidHash,
			}
		}
	}
	if !s.hashService.Supports(cfg.HashType) {
		return cfg, &domain.ConfigError{
			Field:  "algorithm",
			Reason: fmt.Sprintf("unsupported algorithm %q", cfg.HashType),
			Err:    domain.ErrUnsupportedHash,
		}
	}
	if err := checkTarget(cfg.TargetHash, cfg.HashType, s.hashService.DigestSize(cfg.HashType)); err != nil {
		return cfg, err
	}

	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = domain.DefaultProgressInterval
	}
	return cfg, nil
}

// checkTarget rejects a target that no digest of alg can ever equal.
func checkTarget(target string, alg domain.HashType, size int) error {
	if _, err := hex.DecodeString(target); err != nil {
		return &domain.ConfigError{
			Field:  "target",
			Reason: fmt.Sprintf("%q is not a hex digest", target),
			Err:    domain.ErrInvalidHash,
		}
	}
	if want := size * 2; len(target) != want {
		return &domain.ConfigError{
			Field:  "target",
			Reason: fmt.Sprintf("%s digests have %d hex characters, got %d", alg, want, len(target)),
			Err:    domain.ErrInvalidHash,
		}
	}
	return nil
}

// produce moves candidates from source into queue until the source ends or
// the search stops. It returns the source's errors as warnings.
func (s *SearchService) produce(ctx context.Context, source algorithm.Source, queue *concurrency.Queue, logger zerolog.Logger) []string {
	srcCtx, srcStop := context.WithCancel(ctx)
	defer srcStop()

	candidates, errs := source.Start(srcCtx)
	for candidate := range candidates {
		if !s.state.Active() {
			break
		}
		if err := queue.Push(ctx, candidate); err != nil {
			break
		}
	}
	srcStop()
	for range candidates {
	}

	var warnings []string
	for err := range errs {
		if errors.Is(err, domain.ErrInvalidWordlist) {
			logger.Warn().Err(err).Msg("wordlist unavailable, no candidates produced")
		} else {
			logger.Error().Err(err).Msg("candidate source failed")
		}
		warnings = append(warnings, err.Error())
	}

	logger.Debug().Uint64("produced", source.Produced()).Msg("producer finished")
	return warnings
}

func (s *SearchService) record(result *domain.SearchResult, logger zerolog.Logger) {
	if s.metrics != nil {
		s.metrics.SearchFinished(result)
	}
	if s.sink == nil {
		return
	}
	s.sink.Record(reportCategory, result)
	if err := s.sink.Flush(); err != nil {
		logger.Warn().Err(err).Msg("failed to write search report")
	}
}

func (s *SearchService) setStop(stop context.CancelFunc) {
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
}

// Cancel stops the running search, if any. Workers finish the candidate
// they hold and exit; the attempts made so far are kept.
func (s *SearchService) Cancel() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()

	s.state.Cancel()
	if stop != nil {
		stop()
	}
}

func (s *SearchService) Attempts() uint64 {
	return s.state.Attempts()
}

func (s *SearchService) Status() domain.SearchStatus {
	return s.state.Status()
}

// Snapshot returns a consistent copy of the current search state.
func (s *SearchService) Snapshot() Snapshot {
	return s.state.Snapshot()
}

// Metrics returns live pool and resource readings for the running search.
// ok is false when no workers are running.
func (s *SearchService) Metrics() (m domain.ResourceMetrics, ok bool) {
	run := s.current.Load()
	if run == nil {
		return domain.ResourceMetrics{}, false
	}
	m = run.pool.GetMetrics()
	if res := s.collector.GetMetrics(run.id); res != nil {
		m.CPUUsage = res.CPUUsage
		m.MemoryUsageMB = res.MemoryUsageMB
		m.SystemMemPercent = res.SystemMemPercent
	}
	return m, true
}
