package contracts

import "github.com/guregu/null/v6"

// ScoredRecord is one row of the ranked opportunity table
// ⭐ SSOT: S3 → 리포트/대시보드 전달
type ScoredRecord struct {
	FundamentalRecord
	TrendUp   bool       `json:"trend_up"`
	Oversold  bool       `json:"oversold"`
	BuySignal bool       `json:"buy_signal"`
	Beta      null.Float `json:"beta"`
	Liquidity null.Float `json:"liquidity"`
	Score     float64    `json:"score"`
}

// Exclusion records a ticker dropped from scoring
type Exclusion struct {
	Ticker string      `json:"ticker"`
	Reason FaultReason `json:"reason"`
}

// ScoredTable is the ranked table, score descending
type ScoredTable struct {
	Records  []ScoredRecord `json:"records"`
	Excluded []Exclusion    `json:"excluded"`
}

// Column names in display order: Ticker and Score first,
// then fundamental, technical and risk columns as encountered in the join.
var scoredColumns = []string{
	"Ticker",
	"Score",
	"Name",
	"Sector",
	"Price",
	"P/E",
	"ROE",
	"Dividend Yield (%)",
	"Debt/Equity",
	"Market Cap (B)",
	"Trend Up",
	"Oversold",
	"Buy Signal",
	"Beta",
	"Avg Volume",
}

// Columns returns the column names of the table
func (t *ScoredTable) Columns() []string {
	cols := make([]string, len(scoredColumns))
	copy(cols, scoredColumns)
	return cols
}

// Len returns the number of scored records
func (t *ScoredTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Cells returns row i aligned with Columns().
// Absent values are nil; numbers are float64, flags are bool.
func (t *ScoredTable) Cells(i int) []interface{} {
	r := t.Records[i]
	return []interface{}{
		r.Ticker,
		r.Score,
		nullableString(r.Name),
		nullableString(r.Sector),
		nullableFloat(r.Price),
		nullableFloat(r.PE),
		nullableFloat(r.ROE),
		nullableFloat(r.DividendYieldPct),
		nullableFloat(r.DebtToEquity),
		nullableFloat(r.MarketCapBillions),
		r.TrendUp,
		r.Oversold,
		r.BuySignal,
		nullableFloat(r.Beta),
		nullableFloat(r.Liquidity),
	}
}

// Top returns the first n records (all when n <= 0 or n > Len)
func (t *ScoredTable) Top(n int) []ScoredRecord {
	if n <= 0 || n > len(t.Records) {
		return t.Records
	}
	return t.Records[:n]
}

func nullableFloat(f null.Float) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

func nullableString(s null.String) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}
