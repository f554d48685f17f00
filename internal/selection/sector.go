package selection

import (
	"sort"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/wonny/aegis-b3/internal/contracts"
)

// AggregateBySector averages ROE, P/E, DY and D/E per sector.
// Records without a sector are skipped; absent values are left out of the
// mean, and a sector with no present value for a metric gets an absent mean.
// ⭐ SSOT: 섹터 집계는 여기서만
func AggregateBySector(fundamentals []contracts.FundamentalRecord) []contracts.SectorStats {
	type acc struct {
		roe, pe, dy, de meanAcc
		count           int
	}

	groups := make(map[string]*acc)
	seen := make(map[string]struct{}, len(fundamentals))
	for _, f := range fundamentals {
		if _, dup := seen[f.Ticker]; dup {
			continue
		}
		seen[f.Ticker] = struct{}{}

		if !f.Sector.Valid || strings.TrimSpace(f.Sector.String) == "" {
			continue
		}

		g, ok := groups[f.Sector.String]
		if !ok {
			g = &acc{}
			groups[f.Sector.String] = g
		}
		g.roe.add(f.ROE)
		g.pe.add(f.PE)
		g.dy.add(f.DividendYieldPct)
		g.de.add(f.DebtToEquity)
		g.count++
	}

	stats := make([]contracts.SectorStats, 0, len(groups))
	for sector, g := range groups {
		stats = append(stats, contracts.SectorStats{
			Sector:              sector,
			AvgROE:              g.roe.mean(),
			AvgPE:               g.pe.mean(),
			AvgDividendYieldPct: g.dy.mean(),
			AvgDebtToEquity:     g.de.mean(),
			Count:               g.count,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Sector < stats[j].Sector
	})

	return stats
}

type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v null.Float) {
	if !v.Valid {
		return
	}
	m.sum += v.Float64
	m.n++
}

func (m *meanAcc) mean() null.Float {
	if m.n == 0 {
		return null.Float{}
	}
	return null.FloatFrom(m.sum / float64(m.n))
}
