package yahoo

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/wonny/aegis-b3/internal/contracts"
)

// quoteSummary modules requested per ticker
var summaryModules = []string{
	"price",
	"summaryDetail",
	"financialData",
	"defaultKeyStatistics",
	"assetProfile",
}

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper; {} means absent
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (r rawValue) value() null.Float {
	if r.Raw == nil || math.IsNaN(*r.Raw) || math.IsInf(*r.Raw, 0) {
		return null.Float{}
	}
	return null.FloatFrom(*r.Raw)
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *summaryError   `json:"error"`
	} `json:"quoteSummary"`
}

type summaryError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type summaryResult struct {
	Price struct {
		LongName           string   `json:"longName"`
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
	} `json:"price"`
	SummaryDetail struct {
		TrailingPE    rawValue `json:"trailingPE"`
		DividendYield rawValue `json:"dividendYield"`
		MarketCap     rawValue `json:"marketCap"`
		AverageVolume rawValue `json:"averageVolume"`
		Beta          rawValue `json:"beta"`
	} `json:"summaryDetail"`
	FinancialData struct {
		CurrentPrice   rawValue `json:"currentPrice"`
		ReturnOnEquity rawValue `json:"returnOnEquity"`
		DebtToEquity   rawValue `json:"debtToEquity"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		Beta rawValue `json:"beta"`
	} `json:"defaultKeyStatistics"`
	AssetProfile struct {
		Sector              string `json:"sector"`
		// ISS 거버넌스 점수 기준일; 커버리지가 없으면 누락
		GovernanceEpochDate *int64 `json:"governanceEpochDate"`
	} `json:"assetProfile"`
}

// fetchSummary calls /v10/finance/quoteSummary/{ticker}
func (c *Client) fetchSummary(ctx context.Context, ticker string) (*summaryResult, error) {
	var out summaryResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParam("modules", strings.Join(summaryModules, ",")).
		SetResult(&out).
		SetError(&out).
		Get("/v10/finance/quoteSummary/{ticker}")
	if err != nil {
		return nil, fmt.Errorf("quoteSummary request: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("quoteSummary %s: %w", ticker, contracts.ErrNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quoteSummary %s: unexpected status %d", ticker, resp.StatusCode())
	}
	if e := out.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("quoteSummary %s: %s: %s", ticker, e.Code, e.Description)
	}
	if len(out.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quoteSummary %s: %w", ticker, contracts.ErrNotFound)
	}

	return &out.QuoteSummary.Result[0], nil
}
