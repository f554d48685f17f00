package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/fanout"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/metrics"
)

// =============================================================================
// Evaluator - 종목별 리스크 지표
// =============================================================================

// EvaluatorConfig holds batch settings
type EvaluatorConfig struct {
	Workers     int
	CallTimeout time.Duration
}

// Evaluator maps a snapshot to liquidity, beta and governance
// ⭐ SSOT: 리스크 레코드 생성은 여기서만
type Evaluator struct {
	source  contracts.SnapshotSource
	config  EvaluatorConfig
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewEvaluator creates a new risk evaluator
func NewEvaluator(source contracts.SnapshotSource, config EvaluatorConfig, m *metrics.Metrics, log *logger.Logger) *Evaluator {
	return &Evaluator{
		source:  source,
		config:  config,
		metrics: m,
		logger:  log,
	}
}

// Evaluate is the pure mapping of one fetch result.
// Any fetch fault yields {absent, absent, Unknown}.
func (e *Evaluator) Evaluate(ticker string, snap *contracts.Snapshot, fetchErr error) contracts.RiskRecord {
	if fetchErr != nil || snap == nil {
		return contracts.UnknownRisk(ticker)
	}

	governance := contracts.GovernanceNo
	if snap.Governance.Valid && snap.Governance.Bool {
		governance = contracts.GovernanceYes
	}

	return contracts.RiskRecord{
		Ticker:     ticker,
		Liquidity:  snap.AverageVolume,
		Beta:       snap.Beta,
		Governance: governance,
	}
}

// =============================================================================
// Batch
// =============================================================================

// EvaluateBatch returns exactly one record per input ticker, in input order
func (e *Evaluator) EvaluateBatch(ctx context.Context, tickers []string) []contracts.RiskRecord {
	start := time.Now()

	outcomes := fanout.Map(ctx, tickers, e.config.Workers, e.evaluateOne, e.recovered)

	records := make([]contracts.RiskRecord, len(outcomes))
	faults := 0
	for i, o := range outcomes {
		records[i] = o.Value
		if !o.OK() {
			faults++
			e.metrics.TickerFault(contracts.StageRisk.ShortName(), o.Reason.String())
			e.logger.WithTicker(o.Ticker).WithError(o.Err).Warn("Risk evaluation degraded")
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"stage":    contracts.StageRisk.ShortName(),
		"total":    len(tickers),
		"degraded": faults,
		"duration": time.Since(start).String(),
	}).Info("Risk evaluation completed")

	return records
}

func (e *Evaluator) evaluateOne(ctx context.Context, ticker string) contracts.Outcome[contracts.RiskRecord] {
	snap, err := e.fetch(ctx, ticker)
	rec := e.Evaluate(ticker, snap, err)
	if err != nil {
		return contracts.Failed(ticker, rec, contracts.FaultDataUnavailable, err)
	}
	return contracts.Succeeded(ticker, rec)
}

func (e *Evaluator) recovered(ticker string, err error) contracts.Outcome[contracts.RiskRecord] {
	return contracts.Failed(ticker, contracts.UnknownRisk(ticker), contracts.FaultDataUnavailable, err)
}

func (e *Evaluator) fetch(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	callCtx := ctx
	if e.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.config.CallTimeout)
		defer cancel()
	}

	snap, err := e.source.GetSnapshot(callCtx, ticker)
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
