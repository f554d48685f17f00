package contracts

import "github.com/guregu/null/v6"

// SectorStats holds per-sector averages over present values
type SectorStats struct {
	Sector              string     `json:"sector"`
	AvgROE              null.Float `json:"avg_roe"`
	AvgPE               null.Float `json:"avg_pe"`
	AvgDividendYieldPct null.Float `json:"avg_dividend_yield_pct"`
	AvgDebtToEquity     null.Float `json:"avg_debt_to_equity"`
	Count               int        `json:"count"`
}
