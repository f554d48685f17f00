package brain

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/aegis-b3/internal/contracts"
)

// snapshotMemo deduplicates snapshot fetches within one run.
// Concurrent callers for the same ticker share one call; the first result
// (value or error) is reused by every later caller.
type snapshotMemo struct {
	source contracts.SnapshotSource
	group  singleflight.Group

	mu      sync.Mutex
	results map[string]snapshotResult
}

type snapshotResult struct {
	snap *contracts.Snapshot
	err  error
}

func newSnapshotMemo(source contracts.SnapshotSource) *snapshotMemo {
	return &snapshotMemo{
		source:  source,
		results: make(map[string]snapshotResult),
	}
}

// GetSnapshot implements contracts.SnapshotSource
func (m *snapshotMemo) GetSnapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	m.mu.Lock()
	if r, ok := m.results[ticker]; ok {
		m.mu.Unlock()
		return r.snap, r.err
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(ticker, func() (interface{}, error) {
		m.mu.Lock()
		if r, ok := m.results[ticker]; ok {
			m.mu.Unlock()
			return r.snap, r.err
		}
		m.mu.Unlock()

		snap, err := m.source.GetSnapshot(ctx, ticker)

		m.mu.Lock()
		m.results[ticker] = snapshotResult{snap: snap, err: err}
		m.mu.Unlock()

		return snap, err
	})

	snap, _ := v.(*contracts.Snapshot)
	return snap, err
}

// calls returns how many distinct tickers were fetched
func (m *snapshotMemo) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}
