package selection

import (
	"sort"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/internal/strategyconfig"
	"github.com/wonny/aegis-b3/pkg/logger"
)

// Screener implements the value screen (Hard Cut)
// ⭐ SSOT: 가치 필터 로직은 여기서만
type Screener struct {
	config strategyconfig.ValueFilter
	logger *logger.Logger
}

// NewScreener creates a new screener
func NewScreener(config strategyconfig.ValueFilter, logger *logger.Logger) *Screener {
	return &Screener{
		config: config,
		logger: logger,
	}
}

// Screen keeps records with ROE, DY above and P/E, D/E below the thresholds
// (strict), sorted by ROE descending. Absent values fail the filter.
func (s *Screener) Screen(fundamentals []contracts.FundamentalRecord) []contracts.FundamentalRecord {
	passed := make([]contracts.FundamentalRecord, 0)
	filtered := make(map[string]int)

	for _, f := range fundamentals {
		if reason := s.checkConditions(f); reason != "" {
			filtered[reason]++
			continue
		}
		passed = append(passed, f)
	}

	sort.SliceStable(passed, func(i, j int) bool {
		if passed[i].ROE.Float64 != passed[j].ROE.Float64 {
			return passed[i].ROE.Float64 > passed[j].ROE.Float64
		}
		return passed[i].Ticker < passed[j].Ticker
	})

	s.logger.WithFields(map[string]interface{}{
		"input":    len(fundamentals),
		"passed":   len(passed),
		"filtered": filtered,
	}).Info("Value screen completed")

	return passed
}

// checkConditions returns the first failing filter, or "" when all pass
func (s *Screener) checkConditions(f contracts.FundamentalRecord) string {
	c := s.config
	switch {
	case !f.ROE.Valid || f.ROE.Float64 <= c.ROEMin:
		return "roe"
	case !f.PE.Valid || f.PE.Float64 >= c.PEMax:
		return "pe"
	case !f.DividendYieldPct.Valid || f.DividendYieldPct.Float64 <= c.DividendYieldMinPct:
		return "dividend_yield"
	case !f.DebtToEquity.Valid || f.DebtToEquity.Float64 >= c.DebtToEquityMax:
		return "debt_to_equity"
	}
	return ""
}
