package yahoo

import (
	"strings"
	"time"

	"github.com/guregu/null/v6"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"

	"github.com/wonny/aegis-b3/internal/contracts"
)

func fetchEquity(symbol string) (*finance.Equity, error) {
	return equity.Get(symbol)
}

func fetchBars(symbol string, start, end time.Time) ([]*finance.ChartBar, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	bars := make([]*finance.ChartBar, 0)
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

// convertBars maps chart bars to PriceBar, ascending by date.
// Bars without a close are dropped.
func convertBars(bars []*finance.ChartBar) []contracts.PriceBar {
	out := make([]contracts.PriceBar, 0, len(bars))
	for _, b := range bars {
		if b == nil {
			continue
		}
		// finance-go는 null 종가를 0으로 채움 (휴장일, 미완료 세션)
		if !b.Close.IsPositive() {
			continue
		}
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		closePrice, _ := b.Close.Float64()

		out = append(out, contracts.PriceBar{
			Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: int64(b.Volume),
		})
	}
	return out
}

// buildSnapshot merges quoteSummary (preferred) with the equity quote (fallback).
// Either input may be nil.
func buildSnapshot(ticker string, s *summaryResult, eq *finance.Equity) *contracts.Snapshot {
	snap := &contracts.Snapshot{
		Fundamental: contracts.FundamentalRecord{Ticker: ticker},
	}
	f := &snap.Fundamental

	if s != nil {
		if name := strings.TrimSpace(s.Price.LongName); name != "" {
			f.Name = null.StringFrom(name)
		}
		if sector := strings.TrimSpace(s.AssetProfile.Sector); sector != "" {
			f.Sector = null.StringFrom(sector)
		}
		f.Price = firstValid(s.FinancialData.CurrentPrice.value(), s.Price.RegularMarketPrice.value())
		f.PE = s.SummaryDetail.TrailingPE.value()
		f.ROE = s.FinancialData.ReturnOnEquity.value()
		f.DividendYieldPct = scale(s.SummaryDetail.DividendYield.value(), 100)
		f.DebtToEquity = s.FinancialData.DebtToEquity.value()
		f.MarketCapBillions = scale(s.SummaryDetail.MarketCap.value(), 1e-9)

		snap.AverageVolume = s.SummaryDetail.AverageVolume.value()
		snap.Beta = firstValid(s.SummaryDetail.Beta.value(), s.DefaultKeyStatistics.Beta.value())
		if d := s.AssetProfile.GovernanceEpochDate; d != nil {
			snap.Governance = null.BoolFrom(*d != 0)
		}
	}

	if eq != nil {
		// finance-go는 누락을 0으로 표현하므로 0은 없는 값으로 취급
		if !f.Name.Valid {
			if name := firstNonEmpty(eq.LongName, eq.ShortName); name != "" {
				f.Name = null.StringFrom(name)
			}
		}
		f.Price = firstValid(f.Price, nonZero(eq.RegularMarketPrice))
		f.PE = firstValid(f.PE, nonZero(eq.TrailingPE))
		f.DividendYieldPct = firstValid(f.DividendYieldPct, scale(nonZero(eq.TrailingAnnualDividendYield), 100))
		f.MarketCapBillions = firstValid(f.MarketCapBillions, scale(nonZero(float64(eq.MarketCap)), 1e-9))
		snap.AverageVolume = firstValid(snap.AverageVolume, nonZero(float64(eq.AverageDailyVolume3Month)))
	}

	return snap
}

func firstValid(values ...null.Float) null.Float {
	for _, v := range values {
		if v.Valid {
			return v
		}
	}
	return null.Float{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func nonZero(v float64) null.Float {
	if v == 0 {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

func scale(v null.Float, factor float64) null.Float {
	if !v.Valid {
		return v
	}
	return null.FloatFrom(v.Float64 * factor)
}
