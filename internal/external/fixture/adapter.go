// Package fixture serves snapshots and price history from a YAML file.
// It backs offline runs, demos and tests.
package fixture

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"gopkg.in/yaml.v3"

	"github.com/wonny/aegis-b3/internal/contracts"
)

// File is the on-disk fixture layout
type File struct {
	Tickers map[string]Entry `yaml:"tickers"`
}

// Entry is one ticker's fixture data.
// Omitted numeric fields are absent, not zero.
type Entry struct {
	Name              string    `yaml:"name"`
	Sector            string    `yaml:"sector"`
	Price             *float64  `yaml:"price"`
	PE                *float64  `yaml:"pe"`
	ROE               *float64  `yaml:"roe"`
	DividendYieldPct  *float64  `yaml:"dividend_yield_pct"`
	DebtToEquity      *float64  `yaml:"debt_to_equity"`
	MarketCapBillions *float64  `yaml:"market_cap_billions"`
	AverageVolume     *float64  `yaml:"average_volume"`
	Beta              *float64  `yaml:"beta"`
	Governance        *bool     `yaml:"governance"`
	Closes            []float64 `yaml:"closes"`
	Series            *Series   `yaml:"series"`

	// Fail forces an error: "snapshot", "prices" or "all"
	Fail string `yaml:"fail"`
}

// Series generates closes from a start price and piecewise constant steps
type Series struct {
	Start    float64   `yaml:"start"`
	Segments []Segment `yaml:"segments"`
}

// Segment appends Count closes, each Step away from the previous one
type Segment struct {
	Count int     `yaml:"count"`
	Step  float64 `yaml:"step"`
}

// Adapter implements contracts.DataAdapter over a fixture file
// ⭐ SSOT: 오프라인 데이터 소스
type Adapter struct {
	entries map[string]Entry
}

// Load reads and parses a fixture file
func Load(path string) (*Adapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes fixture YAML
func Parse(data []byte) (*Adapter, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return New(f.Tickers), nil
}

// New wraps in-memory entries
func New(entries map[string]Entry) *Adapter {
	norm := make(map[string]Entry, len(entries))
	for ticker, e := range entries {
		norm[strings.ToUpper(strings.TrimSpace(ticker))] = e
	}
	return &Adapter{entries: norm}
}

// Tickers returns the fixture's tickers in ascending order
func (a *Adapter) Tickers() []string {
	out := make([]string, 0, len(a.entries))
	for t := range a.entries {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// GetSnapshot implements contracts.DataAdapter
func (a *Adapter) GetSnapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, ok := a.entries[strings.ToUpper(ticker)]
	if !ok {
		return nil, fmt.Errorf("fixture %s: %w", ticker, contracts.ErrNotFound)
	}
	if e.Fail == "snapshot" || e.Fail == "all" {
		return nil, fmt.Errorf("fixture %s: forced snapshot failure", ticker)
	}

	return &contracts.Snapshot{
		Fundamental: contracts.FundamentalRecord{
			Ticker:            ticker,
			Name:              optString(e.Name),
			Sector:            optString(e.Sector),
			Price:             null.FloatFromPtr(e.Price),
			PE:                null.FloatFromPtr(e.PE),
			ROE:               null.FloatFromPtr(e.ROE),
			DividendYieldPct:  null.FloatFromPtr(e.DividendYieldPct),
			DebtToEquity:      null.FloatFromPtr(e.DebtToEquity),
			MarketCapBillions: null.FloatFromPtr(e.MarketCapBillions),
		},
		AverageVolume: null.FloatFromPtr(e.AverageVolume),
		Beta:          null.FloatFromPtr(e.Beta),
		Governance:    null.BoolFromPtr(e.Governance),
	}, nil
}

// GetPriceHistory implements contracts.DataAdapter.
// Bars are dated one calendar day apart, the last one on end.
func (a *Adapter) GetPriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]contracts.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, ok := a.entries[strings.ToUpper(ticker)]
	if !ok {
		return nil, fmt.Errorf("fixture %s: %w", ticker, contracts.ErrNotFound)
	}
	if e.Fail == "prices" || e.Fail == "all" {
		return nil, fmt.Errorf("fixture %s: forced price failure", ticker)
	}

	closes := e.closes()
	last := end.Truncate(24 * time.Hour)
	bars := make([]contracts.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.PriceBar{
			Date:  last.AddDate(0, 0, i-len(closes)+1),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return bars, nil
}

func (e Entry) closes() []float64 {
	if len(e.Closes) > 0 || e.Series == nil {
		return e.Closes
	}

	out := []float64{e.Series.Start}
	price := e.Series.Start
	for _, seg := range e.Series.Segments {
		for i := 0; i < seg.Count; i++ {
			price += seg.Step
			out = append(out, price)
		}
	}
	return out
}

func optString(s string) null.String {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
