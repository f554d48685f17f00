package contracts

import "time"

// Pipeline Stage 정의 (SSOT)
// 모든 로그와 메트릭 라벨에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → (S2 Technical ∥ S2 Risk) → S3 Scoring → S4 Sectors
//   Fundamentals  Universe  Signals         Score       Sector report

// Stage represents a pipeline stage
type Stage string

const (
	// StageFundamentals S0: 스냅샷 수집 및 펀더멘털 테이블
	// 위치: internal/brain/ (fetch), internal/external/ (adapter)
	StageFundamentals Stage = "S0_FUNDAMENTALS"

	// StageUniverse S1: 티커 목록 로드
	// 위치: internal/s1_universe/
	StageUniverse Stage = "S1_UNIVERSE"

	// StageTechnical S2: MA21/MA50/RSI14 시그널
	// 위치: internal/s2_signals/
	StageTechnical Stage = "S2_TECHNICAL"

	// StageRisk S2: 유동성/베타/거버넌스
	// 위치: internal/risk/
	StageRisk Stage = "S2_RISK"

	// StageScoring S3: 조인 + 기회 점수 + 정렬
	// 위치: internal/selection/ranker.go
	StageScoring Stage = "S3_SCORING"

	// StageSectors S4: 섹터별 평균
	// 위치: internal/selection/sector.go
	StageSectors Stage = "S4_SECTORS"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S2")
func (s Stage) ShortName() string {
	switch s {
	case StageFundamentals, StageUniverse, StageTechnical, StageRisk, StageScoring, StageSectors:
		return string(s[:2])
	default:
		return "UNKNOWN"
	}
}

// StageResult summarizes one stage of a run
type StageResult struct {
	Stage       Stage               `json:"stage"`
	InputCount  int                 `json:"input_count"`
	OutputCount int                 `json:"output_count"`
	Faults      map[FaultReason]int `json:"faults,omitempty"`
	Duration    int64               `json:"duration_ms"`
}

// RunResult is the output of one pipeline run
// ⭐ SSOT: 파이프라인 1회 실행 결과
type RunResult struct {
	RunID        string              `json:"run_id"`
	StartedAt    time.Time           `json:"started_at"`
	Duration     int64               `json:"duration_ms"`
	Tickers      []string            `json:"tickers"`
	Table        *ScoredTable        `json:"table"`
	Fundamentals []FundamentalRecord `json:"fundamentals"`
	Technicals   []TechnicalRecord   `json:"technicals"`
	Risks        []RiskRecord        `json:"risks"`
	Sectors      []SectorStats       `json:"sectors"`
	Stages       []StageResult       `json:"stages"`
	StrategyHash string              `json:"strategy_hash,omitempty"`
	Cached       bool                `json:"cached"`
}
