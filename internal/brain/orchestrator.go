package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/internal/risk"
	"github.com/wonny/aegis-b3/internal/s2_signals"
	"github.com/wonny/aegis-b3/internal/selection"
	"github.com/wonny/aegis-b3/pkg/fanout"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/metrics"
)

// Config holds orchestrator settings
type Config struct {
	Workers      int
	CallTimeout  time.Duration
	LookbackDays int
	StrategyHash string
}

// Orchestrator coordinates one screening run
// S0 → (S2 Technical ∥ S2 Risk) → S3 Scoring → S4 Sectors
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	adapter contracts.DataAdapter
	ranker  *selection.Ranker
	cache   *RunCache
	config  Config
	metrics *metrics.Metrics
	logger  *logger.Logger

	// 실행 이벤트 구독자 (API websocket 등)
	observers []Observer
}

// Observer receives run lifecycle events
type Observer interface {
	RunStarted(runID string, tickers []string)
	RunCompleted(result *contracts.RunResult)
}

// RunOption customizes a single Run call
type RunOption func(*runOptions)

type runOptions struct {
	noCache bool
}

// WithoutCache skips the cache lookup; the fresh result is still stored
func WithoutCache() RunOption {
	return func(o *runOptions) { o.noCache = true }
}

// NewOrchestrator creates a new orchestrator; cache may be nil
func NewOrchestrator(
	adapter contracts.DataAdapter,
	ranker *selection.Ranker,
	cache *RunCache,
	config Config,
	m *metrics.Metrics,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		adapter: adapter,
		ranker:  ranker,
		cache:   cache,
		config:  config,
		metrics: m,
		logger:  log,
	}
}

// Subscribe registers an observer; not safe to call concurrently with Run
func (o *Orchestrator) Subscribe(obs Observer) {
	o.observers = append(o.observers, obs)
}

// Cache returns the run cache (nil when caching is off)
func (o *Orchestrator) Cache() *RunCache {
	return o.cache
}

// Run executes the pipeline for tickers.
// Per-ticker faults degrade records; only an empty ticker list or a
// cancelled context fails the run.
func (o *Orchestrator) Run(ctx context.Context, tickers []string, opts ...RunOption) (*contracts.RunResult, error) {
	var options runOptions
	for _, opt := range opts {
		opt(&options)
	}

	if len(tickers) == 0 {
		return nil, contracts.ErrEmptyUniverse
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if o.cache != nil && !options.noCache {
		if cached, ok := o.cache.Get(ctx, tickers); ok {
			o.metrics.CacheLookup(true)
			o.logger.WithFields(map[string]interface{}{
				"run_id":  cached.RunID,
				"tickers": len(tickers),
				"backend": o.cache.Backend(),
			}).Info("Serving cached pipeline run")

			hit := *cached
			hit.Cached = true
			for _, obs := range o.observers {
				obs.RunCompleted(&hit)
			}
			return &hit, nil
		}
		o.metrics.CacheLookup(false)
	}

	startTime := time.Now()
	result := &contracts.RunResult{
		RunID:        uuid.NewString(),
		StartedAt:    startTime,
		Tickers:      append([]string(nil), tickers...),
		StrategyHash: o.config.StrategyHash,
	}
	log := o.logger.WithField("run_id", result.RunID)

	log.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": o.config.Workers,
	}).Info("Starting pipeline run")
	for _, obs := range o.observers {
		obs.RunStarted(result.RunID, result.Tickers)
	}

	memo := newSnapshotMemo(o.adapter)

	// S0: Fundamentals
	stageStart := time.Now()
	fundamentals, faults := o.fetchFundamentals(ctx, memo, tickers, log)
	result.Fundamentals = fundamentals
	result.Stages = append(result.Stages, stageResult(contracts.StageFundamentals, len(tickers), len(fundamentals), faults, stageStart))
	if err := ctx.Err(); err != nil {
		return o.abort(result, err, startTime)
	}

	// S2: Technical ∥ Risk
	stageStart = time.Now()
	signals := s2_signals.NewBuilder(o.adapter, s2_signals.NewTechnicalCalculator(log), s2_signals.BuilderConfig{
		Workers:      o.config.Workers,
		CallTimeout:  o.config.CallTimeout,
		LookbackDays: o.config.LookbackDays,
	}, o.metrics, log)
	evaluator := risk.NewEvaluator(memo, risk.EvaluatorConfig{
		Workers:     o.config.Workers,
		CallTimeout: o.config.CallTimeout,
	}, o.metrics, log)

	var g errgroup.Group
	g.Go(func() error {
		result.Technicals = signals.BuildTechnical(ctx, tickers)
		return nil
	})
	g.Go(func() error {
		result.Risks = evaluator.EvaluateBatch(ctx, tickers)
		return nil
	})
	_ = g.Wait()

	result.Stages = append(result.Stages,
		stageResult(contracts.StageTechnical, len(tickers), len(result.Technicals), technicalFaults(result.Technicals), stageStart),
		stageResult(contracts.StageRisk, len(tickers), len(result.Risks), riskFaults(result.Risks), stageStart),
	)
	if err := ctx.Err(); err != nil {
		return o.abort(result, err, startTime)
	}

	// S3: Scoring
	stageStart = time.Now()
	result.Table = o.ranker.Score(result.Fundamentals, result.Technicals, result.Risks)
	scoringFaults := make(map[contracts.FaultReason]int)
	for _, ex := range result.Table.Excluded {
		scoringFaults[ex.Reason]++
	}
	result.Stages = append(result.Stages, stageResult(contracts.StageScoring, len(result.Fundamentals), result.Table.Len(), scoringFaults, stageStart))

	// S4: Sectors
	stageStart = time.Now()
	result.Sectors = selection.AggregateBySector(result.Fundamentals)
	result.Stages = append(result.Stages, stageResult(contracts.StageSectors, len(result.Fundamentals), len(result.Sectors), nil, stageStart))

	elapsed := time.Since(startTime)
	result.Duration = elapsed.Milliseconds()
	o.metrics.ObserveRun("success", elapsed)

	if o.cache != nil {
		o.cache.Set(ctx, tickers, result)
	}

	log.WithFields(map[string]interface{}{
		"scored":    result.Table.Len(),
		"excluded":  len(result.Table.Excluded),
		"sectors":   len(result.Sectors),
		"snapshots": memo.calls(),
		"duration":  elapsed.String(),
	}).Info("Pipeline run completed")

	for _, obs := range o.observers {
		obs.RunCompleted(result)
	}

	return result, nil
}

// fetchFundamentals fans out snapshot fetches and keeps successful rows in input order
func (o *Orchestrator) fetchFundamentals(
	ctx context.Context,
	memo *snapshotMemo,
	tickers []string,
	log *logger.Logger,
) ([]contracts.FundamentalRecord, map[contracts.FaultReason]int) {
	outcomes := fanout.Map(ctx, tickers, o.config.Workers,
		func(ctx context.Context, ticker string) contracts.Outcome[contracts.FundamentalRecord] {
			snap, err := o.getSnapshot(ctx, memo, ticker)
			if err != nil {
				return contracts.Failed(ticker, contracts.FundamentalRecord{Ticker: ticker}, contracts.FaultDataUnavailable, err)
			}
			rec := snap.Fundamental
			rec.Ticker = ticker
			return contracts.Succeeded(ticker, rec)
		},
		func(ticker string, err error) contracts.Outcome[contracts.FundamentalRecord] {
			return contracts.Failed(ticker, contracts.FundamentalRecord{Ticker: ticker}, contracts.FaultDataUnavailable, err)
		},
	)

	faults := make(map[contracts.FaultReason]int)
	fundamentals := make([]contracts.FundamentalRecord, 0, len(outcomes))
	for _, out := range outcomes {
		if !out.OK() {
			faults[out.Reason]++
			o.metrics.TickerFault(contracts.StageFundamentals.ShortName(), out.Reason.String())
			log.WithTicker(out.Ticker).WithError(out.Err).Warn("Snapshot unavailable")
			continue
		}
		fundamentals = append(fundamentals, out.Value)
	}
	return fundamentals, faults
}

func (o *Orchestrator) getSnapshot(ctx context.Context, memo *snapshotMemo, ticker string) (*contracts.Snapshot, error) {
	callCtx := ctx
	if o.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.config.CallTimeout)
		defer cancel()
	}

	snap, err := memo.GetSnapshot(callCtx, ticker)
	if err != nil {
		if contracts.IsTimeout(err) {
			return nil, fmt.Errorf("snapshot %s: %w", ticker, contracts.ErrTimeout)
		}
		return nil, fmt.Errorf("snapshot %s: %w", ticker, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("snapshot %s: %w", ticker, contracts.ErrNotFound)
	}
	return snap, nil
}

func (o *Orchestrator) abort(result *contracts.RunResult, err error, startTime time.Time) (*contracts.RunResult, error) {
	o.metrics.ObserveRun("cancelled", time.Since(startTime))
	o.logger.WithField("run_id", result.RunID).WithError(err).Warn("Pipeline run cancelled")
	return nil, fmt.Errorf("run %s: %w", result.RunID, err)
}

func stageResult(stage contracts.Stage, in, out int, faults map[contracts.FaultReason]int, start time.Time) contracts.StageResult {
	if len(faults) == 0 {
		faults = nil
	}
	return contracts.StageResult{
		Stage:       stage,
		InputCount:  in,
		OutputCount: out,
		Faults:      faults,
		Duration:    time.Since(start).Milliseconds(),
	}
}

func technicalFaults(records []contracts.TechnicalRecord) map[contracts.FaultReason]int {
	faults := make(map[contracts.FaultReason]int)
	for _, r := range records {
		if r.Fault != contracts.FaultNone {
			faults[r.Fault]++
		}
	}
	return faults
}

func riskFaults(records []contracts.RiskRecord) map[contracts.FaultReason]int {
	faults := make(map[contracts.FaultReason]int)
	for _, r := range records {
		if r.Governance == contracts.GovernanceUnknown {
			faults[contracts.FaultDataUnavailable]++
		}
	}
	return faults
}
