package contracts

import (
	"time"

	"github.com/guregu/null/v6"
)

// PriceBar is one daily OHLCV bar
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Closes extracts the close series from bars in the given (ascending) order
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// FundamentalRecord holds the fundamentals of one ticker
// ⭐ SSOT: 펀더멘털 레코드 (absent ≠ 0)
type FundamentalRecord struct {
	Ticker            string      `json:"ticker"`
	Name              null.String `json:"name"`
	Sector            null.String `json:"sector"`
	Price             null.Float  `json:"price"`
	PE                null.Float  `json:"pe"`
	ROE               null.Float  `json:"roe"`                 // fraction, 0.20 = 20%
	DividendYieldPct  null.Float  `json:"dividend_yield_pct"`  // percent
	DebtToEquity      null.Float  `json:"debt_to_equity"`      // ratio
	MarketCapBillions null.Float  `json:"market_cap_billions"` // billions of currency units
}

// HasScoringInputs reports whether ROE, DY, PE and DE are all present
func (f FundamentalRecord) HasScoringInputs() bool {
	return f.ROE.Valid && f.DividendYieldPct.Valid && f.PE.Valid && f.DebtToEquity.Valid
}

// Snapshot is the per-ticker payload returned by a data adapter
type Snapshot struct {
	Fundamental   FundamentalRecord `json:"fundamental"`
	AverageVolume null.Float        `json:"average_volume"`
	Beta          null.Float        `json:"beta"`
	Governance    null.Bool         `json:"governance"`
}
