// Package yahoo adapts Yahoo Finance to contracts.DataAdapter.
// Quotes and daily bars come from finance-go; fundamentals that finance-go
// does not expose (ROE, debt/equity, beta, sector, governance coverage) come from
// the quoteSummary endpoint.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	finance "github.com/piquette/finance-go"
	"golang.org/x/time/rate"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/config"
	"github.com/wonny/aegis-b3/pkg/httputil"
	"github.com/wonny/aegis-b3/pkg/logger"
)

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	rest    *resty.Client
	limiter *rate.Limiter
	logger  *logger.Logger

	// finance-go는 전역 함수 기반이라 테스트에서 교체
	getEquity func(symbol string) (*finance.Equity, error)
	getBars   func(symbol string, start, end time.Time) ([]*finance.ChartBar, error)
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	timeout := cfg.Pipeline.CallTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	rest := resty.New().
		SetBaseURL(cfg.Yahoo.BaseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", httputil.DefaultUserAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && httputil.IsRetryableError(r.StatusCode())
		})

	burst := cfg.Yahoo.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		rest:      rest,
		limiter:   rate.NewLimiter(rate.Limit(cfg.Yahoo.RequestsPerSecond), burst),
		logger:    log,
		getEquity: fetchEquity,
		getBars:   fetchBars,
	}
}

// GetSnapshot implements contracts.DataAdapter
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	summary, summaryErr := c.fetchSummary(ctx, ticker)
	equity, equityErr := withContext(ctx, func() (*finance.Equity, error) {
		return c.getEquity(ticker)
	})
	if equityErr == nil && equity == nil {
		equityErr = contracts.ErrNotFound
	}

	if summaryErr != nil && equityErr != nil {
		return nil, fmt.Errorf("yahoo snapshot %s: %w", ticker, errors.Join(summaryErr, equityErr))
	}
	if summaryErr != nil {
		c.logger.WithTicker(ticker).WithError(summaryErr).Debug("quoteSummary unavailable, using quote only")
	}

	snap := buildSnapshot(ticker, summary, equity)
	return snap, nil
}

// GetPriceHistory implements contracts.DataAdapter
func (c *Client) GetPriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]contracts.PriceBar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	bars, err := withContext(ctx, func() ([]*finance.ChartBar, error) {
		return c.getBars(ticker, start, end)
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	return convertBars(bars), nil
}

// withContext runs a context-unaware call and abandons it when ctx ends
func withContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				ch <- result{zero, fmt.Errorf("finance-go panic: %v", r)}
			}
		}()
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}
