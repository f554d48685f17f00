// Package news fetches recent headlines per ticker.
package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/aegis-b3/pkg/config"
	"github.com/wonny/aegis-b3/pkg/httputil"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/redis"
)

// DefaultMaxHeadlines is used when the configured limit is not positive
const DefaultMaxHeadlines = 5

// InfoMoney scrapes the InfoMoney search page
// ⭐ SSOT: InfoMoney 검색 결과의 h2 제목만 사용
type InfoMoney struct {
	client  *httputil.Client
	baseURL string
	max     int
	logger  *logger.Logger
}

// NewInfoMoney creates an InfoMoney headline source.
// limiter may be nil.
func NewInfoMoney(cfg *config.Config, limiter *redis.RateLimiter, log *logger.Logger) *InfoMoney {
	client := httputil.New(cfg, log)
	if limiter != nil {
		client.WithRateLimiter(limiter, redis.HeadlineRateLimit("infomoney", cfg.News.InfoMoneyPerMinute))
	}

	return &InfoMoney{
		client:  client,
		baseURL: cfg.News.InfoMoneyURL,
		max:     limit(cfg.News.MaxHeadlines),
		logger:  log,
	}
}

// Name identifies the source in logs
func (s *InfoMoney) Name() string { return "infomoney" }

// Headlines returns the first h2 titles of the search page for ticker
func (s *InfoMoney) Headlines(ctx context.Context, ticker string) ([]string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("infomoney url: %w", err)
	}
	q := u.Query()
	q.Set("s", ticker)
	u.RawQuery = q.Encode()

	resp, err := s.client.Get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("infomoney %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("infomoney %s: status %d", ticker, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("infomoney %s: parse html: %w", ticker, err)
	}

	headlines := make([]string, 0, s.max)
	doc.Find("h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if title := cleanTitle(sel.Text()); title != "" {
			headlines = append(headlines, title)
		}
		return len(headlines) < s.max
	})

	return headlines, nil
}

// cleanTitle collapses whitespace runs
func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func limit(n int) int {
	if n <= 0 {
		return DefaultMaxHeadlines
	}
	return n
}
