package selection

import (
	"math"
	"sort"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/metrics"
)

// Ranker implements S3: join + opportunity score
// ⭐ SSOT: 기회 점수 계산은 여기서만
type Ranker struct {
	weights ScoreWeights
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// ScoreWeights are the linear score coefficients
type ScoreWeights struct {
	ROE           float64 // × ROE (fraction)
	DividendYield float64 // × DY (%)
	PE            float64 // − × P/E
	DebtToEquity  float64 // − × D/E
	BuySignal     float64 // + if buy signal
	Beta          float64 // − × beta
	DefaultBeta   float64 // beta 없을 때
}

// DefaultScoreWeights returns the B3 opportunity weights
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		ROE:           100,
		DividendYield: 1.5,
		PE:            1.0,
		DebtToEquity:  10,
		BuySignal:     25,
		Beta:          5,
		DefaultBeta:   1,
	}
}

// NewRanker creates a new ranker
func NewRanker(weights ScoreWeights, m *metrics.Metrics, log *logger.Logger) *Ranker {
	return &Ranker{
		weights: weights,
		metrics: m,
		logger:  log,
	}
}

// Score joins fundamentals ⋈ technicals (inner) and risk (left; beta and
// liquidity only), scores every complete record and sorts by score
// descending, ticker ascending on ties. Duplicate tickers keep the first row.
func (r *Ranker) Score(
	fundamentals []contracts.FundamentalRecord,
	technicals []contracts.TechnicalRecord,
	risks []contracts.RiskRecord,
) *contracts.ScoredTable {
	techByTicker := make(map[string]contracts.TechnicalRecord, len(technicals))
	for _, t := range technicals {
		if _, dup := techByTicker[t.Ticker]; !dup {
			techByTicker[t.Ticker] = t
		}
	}
	riskByTicker := make(map[string]contracts.RiskRecord, len(risks))
	for _, rk := range risks {
		if _, dup := riskByTicker[rk.Ticker]; !dup {
			riskByTicker[rk.Ticker] = rk
		}
	}

	table := &contracts.ScoredTable{
		Records:  make([]contracts.ScoredRecord, 0, len(fundamentals)),
		Excluded: make([]contracts.Exclusion, 0),
	}

	seen := make(map[string]struct{}, len(fundamentals))
	for _, f := range fundamentals {
		if _, dup := seen[f.Ticker]; dup {
			continue
		}
		seen[f.Ticker] = struct{}{}

		tech, ok := techByTicker[f.Ticker]
		if !ok {
			table.Excluded = append(table.Excluded, contracts.Exclusion{Ticker: f.Ticker, Reason: contracts.FaultDataUnavailable})
			continue
		}

		rec := contracts.ScoredRecord{
			FundamentalRecord: f,
			TrendUp:           tech.TrendUp,
			Oversold:          tech.Oversold,
			BuySignal:         tech.BuySignal,
		}
		if rk, ok := riskByTicker[f.Ticker]; ok {
			rec.Beta = rk.Beta
			rec.Liquidity = rk.Liquidity
		}

		score, ok := r.score(rec)
		if !ok {
			table.Excluded = append(table.Excluded, contracts.Exclusion{Ticker: f.Ticker, Reason: contracts.FaultIncompleteFundamentals})
			continue
		}
		rec.Score = score
		table.Records = append(table.Records, rec)
	}

	// 펀더멘털 수집 실패 종목
	for _, t := range technicals {
		if _, ok := seen[t.Ticker]; ok {
			continue
		}
		seen[t.Ticker] = struct{}{}
		table.Excluded = append(table.Excluded, contracts.Exclusion{Ticker: t.Ticker, Reason: contracts.FaultDataUnavailable})
	}

	sort.SliceStable(table.Records, func(i, j int) bool {
		a, b := table.Records[i], table.Records[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Ticker < b.Ticker
	})

	r.metrics.Records("scored", len(table.Records))
	r.metrics.Records("excluded", len(table.Excluded))
	for _, ex := range table.Excluded {
		r.metrics.TickerFault(contracts.StageScoring.ShortName(), ex.Reason.String())
	}

	fields := map[string]interface{}{
		"stage":    contracts.StageScoring.ShortName(),
		"scored":   len(table.Records),
		"excluded": len(table.Excluded),
	}
	if len(table.Records) > 0 {
		fields["top_ticker"] = table.Records[0].Ticker
		fields["top_score"] = table.Records[0].Score
	}
	r.logger.WithFields(fields).Info("Scoring completed")

	return table
}

// score applies the weights; false when an input is absent or non-finite
func (r *Ranker) score(rec contracts.ScoredRecord) (float64, bool) {
	if !rec.HasScoringInputs() {
		return 0, false
	}

	beta := r.weights.DefaultBeta
	if rec.Beta.Valid && !math.IsNaN(rec.Beta.Float64) {
		beta = rec.Beta.Float64
	}

	buy := 0.0
	if rec.BuySignal {
		buy = 1
	}

	w := r.weights
	score := rec.ROE.Float64*w.ROE +
		rec.DividendYieldPct.Float64*w.DividendYield -
		rec.PE.Float64*w.PE -
		rec.DebtToEquity.Float64*w.DebtToEquity +
		buy*w.BuySignal -
		beta*w.Beta

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, false
	}
	return score, true
}
