package s2_signals

import (
	"math"

	"github.com/guregu/null/v6"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/logger"
)

// Indicator windows
const (
	ShortWindow     = 21 // MA21
	LongWindow      = 50 // MA50
	RSIPeriod       = 14
	OversoldBelow   = 30.0
	MinimumCloses   = LongWindow
	DefaultLookback = 180 // calendar days
)

// TechnicalCalculator derives trend/oversold/buy flags from a close series
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type TechnicalCalculator struct {
	logger *logger.Logger
}

// NewTechnicalCalculator creates a new technical calculator
func NewTechnicalCalculator(log *logger.Logger) *TechnicalCalculator {
	return &TechnicalCalculator{
		logger: log,
	}
}

// Compute evaluates the latest bar of closes (ascending by date).
// closes is read-only.
func (c *TechnicalCalculator) Compute(ticker string, closes []float64) contracts.TechnicalRecord {
	if len(closes) < MinimumCloses || len(closes)-1 < RSIPeriod {
		return contracts.FaultedTechnical(ticker, contracts.FaultInsufficientHistory)
	}

	rec := contracts.TechnicalRecord{Ticker: ticker}

	shortMA, shortOK := tailMean(closes, ShortWindow)
	longMA, longOK := tailMean(closes, LongWindow)
	if !shortOK || !longOK {
		return contracts.FaultedTechnical(ticker, contracts.FaultInsufficientHistory)
	}
	rec.Indicators.ShortMA = null.FloatFrom(shortMA)
	rec.Indicators.LongMA = null.FloatFrom(longMA)
	rec.TrendUp = shortMA > longMA

	avgGain, avgLoss, ok := gainLoss(closes, RSIPeriod)
	switch {
	case !ok:
		rec.Fault = contracts.FaultInsufficientHistory
	case avgLoss == 0:
		// RS 정의 불가 (손실 없음)
		rec.Fault = contracts.FaultUndefinedRatio
	default:
		rs := avgGain / avgLoss
		rsi := 100 - 100/(1+rs)
		rec.Indicators.Oscillator = null.FloatFrom(rsi)
		rec.Oversold = rsi < OversoldBelow
	}

	rec.BuySignal = rec.TrendUp && rec.Oversold

	c.logger.WithFields(map[string]interface{}{
		"ticker":     ticker,
		"short_ma":   rec.Indicators.ShortMA.Ptr(),
		"long_ma":    rec.Indicators.LongMA.Ptr(),
		"rsi":        rec.Indicators.Oscillator.Ptr(),
		"buy_signal": rec.BuySignal,
		"fault":      rec.Fault.String(),
	}).Debug("Calculated technical signal")

	return rec
}

// tailMean is the simple mean of the last n values; false if any is non-finite
func tailMean(values []float64, n int) (float64, bool) {
	if len(values) < n {
		return 0, false
	}

	var sum float64
	for _, v := range values[len(values)-n:] {
		if !isFinite(v) {
			return 0, false
		}
		sum += v
	}
	return sum / float64(n), true
}

// gainLoss averages the positive and negative parts of the last period changes
func gainLoss(closes []float64, period int) (avgGain, avgLoss float64, ok bool) {
	if len(closes) < period+1 {
		return 0, 0, false
	}

	window := closes[len(closes)-period-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		prev, cur := window[i-1], window[i]
		if !isFinite(prev) || !isFinite(cur) {
			return 0, 0, false
		}
		change := cur - prev
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	return gains / float64(period), losses / float64(period), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
