package brain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/internal/selection"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/metrics"
)

type fakeAdapter struct {
	mu        sync.Mutex
	snapshots map[string]*contracts.Snapshot
	closes    map[string][]float64
	errs      map[string]error
	snapCalls map[string]int
}

func (f *fakeAdapter) GetSnapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	f.mu.Lock()
	if f.snapCalls == nil {
		f.snapCalls = make(map[string]int)
	}
	f.snapCalls[ticker]++
	f.mu.Unlock()

	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	snap, ok := f.snapshots[ticker]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (f *fakeAdapter) GetPriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]contracts.PriceBar, error) {
	closes := f.closes[ticker]
	bars := make([]contracts.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.PriceBar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return bars, nil
}

func (f *fakeAdapter) totalSnapshotCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.snapCalls {
		total += n
	}
	return total
}

func buyCloses() []float64 {
	closes := make([]float64, 0, 70)
	for i := 0; i < 56; i++ {
		closes = append(closes, 100+2*float64(i))
	}
	for i := 1; i <= 14; i++ {
		closes = append(closes, 210-float64(i))
	}
	return closes
}

func flatCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 50
	}
	return closes
}

func exampleAdapter() *fakeAdapter {
	return &fakeAdapter{
		snapshots: map[string]*contracts.Snapshot{
			"A": {
				Fundamental: contracts.FundamentalRecord{
					Sector:           null.StringFrom("Energy"),
					ROE:              null.FloatFrom(0.20),
					PE:               null.FloatFrom(8),
					DividendYieldPct: null.FloatFrom(6),
					DebtToEquity:     null.FloatFrom(0.5),
				},
				Beta:       null.FloatFrom(0.8),
				Governance: null.BoolFrom(true),
			},
			"B": {
				Fundamental: contracts.FundamentalRecord{
					Sector:           null.StringFrom("Energy"),
					PE:               null.FloatFrom(10),
					DividendYieldPct: null.FloatFrom(4),
					DebtToEquity:     null.FloatFrom(0.3),
				},
			},
			"C": {
				Fundamental: contracts.FundamentalRecord{
					Sector:           null.StringFrom("Utilities"),
					ROE:              null.FloatFrom(0.10),
					PE:               null.FloatFrom(10),
					DividendYieldPct: null.FloatFrom(4),
					DebtToEquity:     null.FloatFrom(0.3),
				},
			},
		},
		closes: map[string][]float64{
			"A": buyCloses(),
			"B": flatCloses(60),
			"C": flatCloses(60),
		},
	}
}

func newTestOrchestrator(adapter contracts.DataAdapter, cache *RunCache) *Orchestrator {
	ranker := selection.NewRanker(selection.DefaultScoreWeights(), nil, logger.Nop())
	return NewOrchestrator(adapter, ranker, cache, Config{
		Workers:     4,
		CallTimeout: time.Second,
	}, metrics.New(), logger.Nop())
}

func scoredTickers(res *contracts.RunResult) []string {
	out := make([]string, 0, res.Table.Len())
	for _, r := range res.Table.Records {
		out = append(out, r.Ticker)
	}
	return out
}

func TestRun_EndToEndExample(t *testing.T) {
	adapter := exampleAdapter()
	res, err := newTestOrchestrator(adapter, nil).Run(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.Cached)
	require.Equal(t, []string{"A", "C"}, scoredTickers(res))
	assert.InDelta(t, 37.0, res.Table.Records[0].Score, 1e-9)
	assert.InDelta(t, -2.0, res.Table.Records[1].Score, 1e-9)

	require.Len(t, res.Table.Excluded, 1)
	assert.Equal(t, "B", res.Table.Excluded[0].Ticker)
	assert.Equal(t, contracts.FaultIncompleteFundamentals, res.Table.Excluded[0].Reason)

	require.Len(t, res.Technicals, 3)
	require.Len(t, res.Risks, 3)
	assert.Equal(t, contracts.GovernanceYes, res.Risks[0].Governance)
	assert.Equal(t, contracts.GovernanceNo, res.Risks[2].Governance)

	require.Len(t, res.Sectors, 2)
	assert.Equal(t, "Energy", res.Sectors[0].Sector)
	assert.Equal(t, 2, res.Sectors[0].Count)

	assert.Len(t, res.Stages, 5)
}

func TestRun_SnapshotFetchedOncePerTicker(t *testing.T) {
	adapter := exampleAdapter()
	_, err := newTestOrchestrator(adapter, nil).Run(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	for _, ticker := range []string{"A", "B", "C"} {
		assert.Equal(t, 1, adapter.snapCalls[ticker], ticker)
	}
}

func TestRun_SnapshotFailureDegrades(t *testing.T) {
	adapter := exampleAdapter()
	adapter.errs = map[string]error{"C": errors.New("yahoo 500")}

	res, err := newTestOrchestrator(adapter, nil).Run(context.Background(), []string{"A", "B", "C", "MISSING"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, scoredTickers(res))
	assert.Len(t, res.Fundamentals, 2)
	assert.Equal(t, contracts.GovernanceUnknown, res.Risks[2].Governance)
	assert.Equal(t, contracts.GovernanceUnknown, res.Risks[3].Governance)

	reasons := make(map[string]contracts.FaultReason)
	for _, ex := range res.Table.Excluded {
		reasons[ex.Ticker] = ex.Reason
	}
	assert.Equal(t, contracts.FaultIncompleteFundamentals, reasons["B"])
	assert.Equal(t, contracts.FaultDataUnavailable, reasons["C"])
	assert.Equal(t, contracts.FaultDataUnavailable, reasons["MISSING"])
}

func TestRun_Errors(t *testing.T) {
	o := newTestOrchestrator(exampleAdapter(), nil)

	_, err := o.Run(context.Background(), nil)
	assert.ErrorIs(t, err, contracts.ErrEmptyUniverse)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.Run(ctx, []string{"A"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Cache(t *testing.T) {
	adapter := exampleAdapter()
	cache := NewRunCache(nil, time.Minute, time.Hour, logger.Nop())
	o := newTestOrchestrator(adapter, cache)

	first, err := o.Run(context.Background(), []string{"A", "C"})
	require.NoError(t, err)
	calls := adapter.totalSnapshotCalls()

	second, err := o.Run(context.Background(), []string{"C", "A", "A"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.RunID, second.RunID)
	assert.False(t, first.Cached, "cached copy must not mutate the stored result")
	assert.Equal(t, calls, adapter.totalSnapshotCalls())

	fresh, err := o.Run(context.Background(), []string{"A", "C"}, WithoutCache())
	require.NoError(t, err)
	assert.False(t, fresh.Cached)
	assert.NotEqual(t, first.RunID, fresh.RunID)
}

type recordingObserver struct {
	mu        sync.Mutex
	started   []string
	completed []string
}

func (r *recordingObserver) RunStarted(runID string, tickers []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, runID)
}

func (r *recordingObserver) RunCompleted(result *contracts.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, result.RunID)
}

func TestRun_NotifiesObservers(t *testing.T) {
	o := newTestOrchestrator(exampleAdapter(), nil)
	obs := &recordingObserver{}
	o.Subscribe(obs)

	res, err := o.Run(context.Background(), []string{"A"})
	require.NoError(t, err)

	assert.Equal(t, []string{res.RunID}, obs.started)
	assert.Equal(t, []string{res.RunID}, obs.completed)
}

func TestRun_CacheHitNotifiesCompletionOnly(t *testing.T) {
	cache := NewRunCache(nil, time.Minute, time.Hour, logger.Nop())
	o := newTestOrchestrator(exampleAdapter(), cache)
	obs := &recordingObserver{}
	o.Subscribe(obs)

	first, err := o.Run(context.Background(), []string{"A"})
	require.NoError(t, err)
	_, err = o.Run(context.Background(), []string{"A"})
	require.NoError(t, err)

	assert.Equal(t, []string{first.RunID}, obs.started)
	assert.Equal(t, []string{first.RunID, first.RunID}, obs.completed)
}
