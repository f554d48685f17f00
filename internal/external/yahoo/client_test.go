package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/internal/s2_signals"
	"github.com/wonny/aegis-b3/pkg/config"
	"github.com/wonny/aegis-b3/pkg/logger"
)

const petrSummary = `{
  "quoteSummary": {
    "result": [{
      "price": {"longName": "Petróleo Brasileiro S.A. - Petrobras", "regularMarketPrice": {"raw": 36.5, "fmt": "36.50"}},
      "summaryDetail": {
        "trailingPE": {"raw": 4.2, "fmt": "4.20"},
        "dividendYield": {"raw": 0.152, "fmt": "15.20%"},
        "marketCap": {"raw": 480000000000, "fmt": "480B"},
        "averageVolume": {"raw": 45000000, "fmt": "45M"},
        "beta": {}
      },
      "financialData": {
        "currentPrice": {"raw": 36.7, "fmt": "36.70"},
        "returnOnEquity": {"raw": 0.29, "fmt": "29%"},
        "debtToEquity": {"raw": 75.4, "fmt": "75.40"}
      },
      "defaultKeyStatistics": {"beta": {"raw": 1.1, "fmt": "1.10"}},
      "assetProfile": {"sector": "Energy", "overallRisk": 7, "governanceEpochDate": 1714521600}
    }],
    "error": null
  }
}`

const notFoundSummary = `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: NOPE3.SA"}}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Yahoo: config.YahooConfig{
			BaseURL:           server.URL,
			RequestsPerSecond: 1000,
			Burst:             10,
		},
		Pipeline: config.PipelineConfig{CallTimeout: 2 * time.Second},
	}
	c := NewClient(cfg, logger.Nop())
	c.rest.SetRetryCount(0)
	c.getEquity = func(string) (*finance.Equity, error) { return nil, nil }
	return c
}

func summaryHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("modules"), "financialData")
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/PETR4.SA") {
			_, _ = w.Write([]byte(petrSummary))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFoundSummary))
	}
}

func TestGetSnapshot_FromSummary(t *testing.T) {
	c := newTestClient(t, summaryHandler(t))

	snap, err := c.GetSnapshot(context.Background(), "PETR4.SA")
	require.NoError(t, err)

	f := snap.Fundamental
	assert.Equal(t, "PETR4.SA", f.Ticker)
	assert.Equal(t, "Petróleo Brasileiro S.A. - Petrobras", f.Name.String)
	assert.Equal(t, "Energy", f.Sector.String)
	assert.Equal(t, 36.7, f.Price.Float64, "financialData price preferred")
	assert.Equal(t, 4.2, f.PE.Float64)
	assert.Equal(t, 0.29, f.ROE.Float64)
	assert.InDelta(t, 15.2, f.DividendYieldPct.Float64, 1e-9)
	assert.Equal(t, 75.4, f.DebtToEquity.Float64)
	assert.InDelta(t, 480.0, f.MarketCapBillions.Float64, 1e-9)

	assert.Equal(t, 45000000.0, snap.AverageVolume.Float64)
	assert.Equal(t, 1.1, snap.Beta.Float64, "falls back to key statistics beta")
	require.True(t, snap.Governance.Valid)
	assert.True(t, snap.Governance.Bool)
}

func TestBuildSnapshot_Governance(t *testing.T) {
	date := func(v int64) *int64 { return &v }

	tests := []struct {
		name      string
		epoch     *int64
		wantValid bool
		wantBool  bool
	}{
		{"iss coverage", date(1714521600), true, true},
		{"zero date", date(0), true, false},
		{"risk score only", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &summaryResult{}
			s.AssetProfile.GovernanceEpochDate = tt.epoch

			snap := buildSnapshot("ITUB4.SA", s, nil)
			assert.Equal(t, tt.wantValid, snap.Governance.Valid)
			assert.Equal(t, tt.wantBool, snap.Governance.Bool)
		})
	}
}

func TestGetSnapshot_EquityFallback(t *testing.T) {
	c := newTestClient(t, summaryHandler(t))
	c.getEquity = func(symbol string) (*finance.Equity, error) {
		eq := &finance.Equity{LongName: "Vale S.A.", TrailingPE: 0, MarketCap: 250_000_000_000}
		eq.RegularMarketPrice = 61.2
		eq.AverageDailyVolume3Month = 20_000_000
		return eq, nil
	}

	snap, err := c.GetSnapshot(context.Background(), "VALE3.SA")
	require.NoError(t, err)

	f := snap.Fundamental
	assert.Equal(t, "Vale S.A.", f.Name.String)
	assert.Equal(t, 61.2, f.Price.Float64)
	assert.False(t, f.PE.Valid, "zero from finance-go is absent")
	assert.False(t, f.ROE.Valid)
	assert.False(t, f.DividendYieldPct.Valid)
	assert.InDelta(t, 250.0, f.MarketCapBillions.Float64, 1e-9)
	assert.Equal(t, 20_000_000.0, snap.AverageVolume.Float64)
	assert.False(t, snap.Beta.Valid)
	assert.False(t, snap.Governance.Valid)
}

func TestGetSnapshot_BothSourcesFail(t *testing.T) {
	c := newTestClient(t, summaryHandler(t))
	c.getEquity = func(string) (*finance.Equity, error) { return nil, errors.New("remote-error") }

	_, err := c.GetSnapshot(context.Background(), "NOPE3.SA")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestGetSnapshot_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetSnapshot(context.Background(), "PETR4.SA")
	assert.Error(t, err)
}

func TestGetSnapshot_ContextTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c.getEquity = func(string) (*finance.Equity, error) {
		time.Sleep(200 * time.Millisecond)
		return &finance.Equity{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.GetSnapshot(ctx, "SLOW3.SA")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetPriceHistory(t *testing.T) {
	c := newTestClient(t, summaryHandler(t))

	day := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	c.getBars = func(symbol string, start, end time.Time) ([]*finance.ChartBar, error) {
		assert.Equal(t, "ITUB4.SA", symbol)
		return []*finance.ChartBar{
			{Open: decimal.RequireFromString("33.10"), High: decimal.RequireFromString("33.80"),
				Low: decimal.RequireFromString("32.90"), Close: decimal.RequireFromString("33.55"),
				Volume: 1200, Timestamp: int(day.Unix())},
			nil,
			{Close: decimal.RequireFromString("34.00"), Timestamp: int(day.AddDate(0, 0, 1).Unix())},
		}, nil
	}

	bars, err := c.GetPriceHistory(context.Background(), "ITUB4.SA", day.AddDate(0, 0, -10), day)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, day.Equal(bars[0].Date))
	assert.Equal(t, 33.55, bars[0].Close)
	assert.Equal(t, int64(1200), bars[0].Volume)
	assert.Equal(t, []float64{33.55, 34.0}, contracts.Closes(bars))

	c.getBars = func(string, time.Time, time.Time) ([]*finance.ChartBar, error) {
		return nil, errors.New("chart down")
	}
	_, err = c.GetPriceHistory(context.Background(), "ITUB4.SA", day, day)
	assert.Error(t, err)
}

func TestConvertBars_DropsMissingClose(t *testing.T) {
	day := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)

	var bars []*finance.ChartBar
	for i := 0; i < 60; i++ {
		bars = append(bars, &finance.ChartBar{
			Close:     decimal.NewFromFloat(10 + 0.1*float64(i)),
			Timestamp: int(day.AddDate(0, 0, i).Unix()),
		})
	}
	// null 종가 (finance-go가 0으로 채움)
	bars = append(bars, &finance.ChartBar{Timestamp: int(day.AddDate(0, 0, 60).Unix())})
	bars = append(bars, &finance.ChartBar{Close: decimal.Zero, Timestamp: int(day.AddDate(0, 0, 61).Unix())})

	out := convertBars(bars)
	require.Len(t, out, 60)
	assert.InDelta(t, 15.9, out[len(out)-1].Close, 1e-9)

	rec := s2_signals.NewTechnicalCalculator(logger.Nop()).Compute("RISE", contracts.Closes(out))
	assert.True(t, rec.TrendUp)
	assert.False(t, rec.Oversold)
	assert.False(t, rec.BuySignal)
}

func TestWithContext_RecoversPanic(t *testing.T) {
	_, err := withContext(context.Background(), func() (int, error) {
		panic("boom")
	})
	assert.ErrorContains(t, err, "boom")
}
