package s2_signals

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/fanout"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/metrics"
)

// BuilderConfig holds batch settings
type BuilderConfig struct {
	Workers      int
	CallTimeout  time.Duration
	LookbackDays int
}

// Builder runs the technical calculator over a ticker batch
// ⭐ SSOT: 기술적 시그널 배치 오케스트레이션은 여기서만
type Builder struct {
	prices    contracts.PriceSource
	technical *TechnicalCalculator
	config    BuilderConfig
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time
}

// NewBuilder creates a new signal builder
func NewBuilder(
	prices contracts.PriceSource,
	technical *TechnicalCalculator,
	config BuilderConfig,
	m *metrics.Metrics,
	log *logger.Logger,
) *Builder {
	if config.LookbackDays <= 0 {
		config.LookbackDays = DefaultLookback
	}
	return &Builder{
		prices:    prices,
		technical: technical,
		config:    config,
		metrics:   m,
		logger:    log,
		now:       time.Now,
	}
}

// BuildTechnical returns exactly one record per input ticker, in input order.
// Faulted tickers get the all-false record; the batch never aborts.
func (b *Builder) BuildTechnical(ctx context.Context, tickers []string) []contracts.TechnicalRecord {
	start := time.Now()

	outcomes := fanout.Map(ctx, tickers, b.config.Workers, b.buildOne, b.recovered)

	records := make([]contracts.TechnicalRecord, len(outcomes))
	faults := 0
	for i, o := range outcomes {
		records[i] = o.Value
		if o.Reason != contracts.FaultNone {
			faults++
			b.metrics.TickerFault(contracts.StageTechnical.ShortName(), o.Reason.String())
			entry := b.logger.WithTicker(o.Ticker).WithField("reason", o.Reason.String())
			if o.Err != nil {
				entry = entry.WithError(o.Err)
			}
			entry.Warn("Technical signal degraded")
		}
	}

	b.logger.WithFields(map[string]interface{}{
		"stage":    contracts.StageTechnical.ShortName(),
		"total":    len(tickers),
		"degraded": faults,
		"duration": time.Since(start).String(),
	}).Info("Technical signal generation completed")

	return records
}

// buildOne fetches history and computes the record for one ticker
func (b *Builder) buildOne(ctx context.Context, ticker string) contracts.Outcome[contracts.TechnicalRecord] {
	closes, err := b.fetchCloses(ctx, ticker)
	if err != nil {
		return contracts.Failed(ticker,
			contracts.FaultedTechnical(ticker, contracts.FaultDataUnavailable),
			contracts.FaultDataUnavailable, err)
	}

	rec := b.technical.Compute(ticker, closes)
	if rec.Fault != contracts.FaultNone {
		return contracts.Failed(ticker, rec, rec.Fault, nil)
	}
	return contracts.Succeeded(ticker, rec)
}

// recovered converts a worker panic into the data_unavailable record
func (b *Builder) recovered(ticker string, err error) contracts.Outcome[contracts.TechnicalRecord] {
	return contracts.Failed(ticker,
		contracts.FaultedTechnical(ticker, contracts.FaultDataUnavailable),
		contracts.FaultDataUnavailable, err)
}

// fetchCloses loads the lookback window under the per-call timeout
func (b *Builder) fetchCloses(ctx context.Context, ticker string) ([]float64, error) {
	callCtx := ctx
	if b.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.config.CallTimeout)
		defer cancel()
	}

	end := b.now()
	start := end.AddDate(0, 0, -b.config.LookbackDays)

	bars, err := b.prices.GetPriceHistory(callCtx, ticker, start, end)
	if err != nil {
		if contracts.IsTimeout(err) {
			return nil, fmt.Errorf("price history %s: %w", ticker, contracts.ErrTimeout)
		}
		return nil, fmt.Errorf("price history %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("price history %s: %w", ticker, contracts.ErrNoHistory)
	}

	return contracts.Closes(bars), nil
}
