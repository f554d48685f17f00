package contracts

import (
	"context"
	"time"
)

// SnapshotSource fetches the per-ticker snapshot (S0, S2 Risk)
// ⭐ SSOT: 스냅샷 조회 인터페이스
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, ticker string) (*Snapshot, error)
}

// PriceSource fetches daily price history (S2 Technical)
// ⭐ SSOT: 가격 이력 조회 인터페이스
type PriceSource interface {
	GetPriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]PriceBar, error)
}

// DataAdapter supplies snapshots and price history
// ⭐ SSOT: 외부 데이터 소스 인터페이스
type DataAdapter interface {
	SnapshotSource
	PriceSource
}
