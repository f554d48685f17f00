package contracts

import "github.com/guregu/null/v6"

// TechnicalRecord is the Indicator Engine output for one ticker
// ⭐ SSOT: 기술적 시그널 (TrendUp, Oversold, BuySignal)
type TechnicalRecord struct {
	Ticker     string      `json:"ticker"`
	TrendUp    bool        `json:"trend_up"`
	Oversold   bool        `json:"oversold"`
	BuySignal  bool        `json:"buy_signal"`
	Indicators Indicators  `json:"indicators"`
	Fault      FaultReason `json:"fault,omitempty"`
}

// Indicators are diagnostics behind the booleans, never part of the scored table
type Indicators struct {
	ShortMA    null.Float `json:"short_ma"`   // MA21
	LongMA     null.Float `json:"long_ma"`    // MA50
	Oscillator null.Float `json:"oscillator"` // RSI14
}

// FaultedTechnical returns the all-false record for a degraded ticker
func FaultedTechnical(ticker string, reason FaultReason) TechnicalRecord {
	return TechnicalRecord{Ticker: ticker, Fault: reason}
}
