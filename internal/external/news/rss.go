package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/wonny/aegis-b3/pkg/config"
	"github.com/wonny/aegis-b3/pkg/httputil"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/redis"
)

// RSS reads headlines from a search feed such as Google News
type RSS struct {
	client      *httputil.Client
	urlTemplate string // %s = query-escaped ticker
	max         int
	logger      *logger.Logger
}

// NewRSS creates an RSS headline source.
// limiter may be nil.
func NewRSS(cfg *config.Config, limiter *redis.RateLimiter, log *logger.Logger) *RSS {
	client := httputil.New(cfg, log)
	if limiter != nil {
		client.WithRateLimiter(limiter, redis.HeadlineRateLimit("google_news", cfg.News.RSSPerMinute))
	}

	return &RSS{
		client:      client,
		urlTemplate: cfg.News.RSSURL,
		max:         limit(cfg.News.MaxHeadlines),
		logger:      log,
	}
}

// Name identifies the source in logs
func (s *RSS) Name() string { return "rss" }

// Headlines returns the first item titles of the feed, in feed order
func (s *RSS) Headlines(ctx context.Context, ticker string) ([]string, error) {
	feedURL := s.urlTemplate
	if strings.Contains(feedURL, "%s") {
		feedURL = fmt.Sprintf(feedURL, url.QueryEscape(ticker))
	}

	resp, err := s.client.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("rss %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s: status %d", ticker, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rss %s: parse feed: %w", ticker, err)
	}

	headlines := make([]string, 0, s.max)
	for _, item := range feed.Items {
		if len(headlines) == s.max {
			break
		}
		if item == nil {
			continue
		}
		if title := cleanTitle(item.Title); title != "" {
			headlines = append(headlines, title)
		}
	}

	return headlines, nil
}
