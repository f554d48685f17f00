package news

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/logger"
)

// Source is a named headline source
type Source interface {
	contracts.HeadlineSource
	Name() string
}

// Combined queries sources in order and merges distinct headlines up to max
// ⭐ SSOT: 헤드라인 소스 우선순위 = 등록 순서
type Combined struct {
	sources []Source
	max     int
	logger  *logger.Logger
}

// NewCombined creates a combined headline source
func NewCombined(maxHeadlines int, log *logger.Logger, sources ...Source) *Combined {
	return &Combined{
		sources: sources,
		max:     limit(maxHeadlines),
		logger:  log,
	}
}

// Headlines implements contracts.HeadlineSource.
// A failing source is skipped; the error is returned only when every source failed.
func (c *Combined) Headlines(ctx context.Context, ticker string) ([]string, error) {
	seen := make(map[string]struct{})
	headlines := make([]string, 0, c.max)
	var errs []error

	for _, src := range c.sources {
		if len(headlines) >= c.max {
			break
		}

		got, err := src.Headlines(ctx, ticker)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"source": src.Name(),
			}).WithError(err).Warn("Headline source failed")
			errs = append(errs, err)
			continue
		}

		for _, h := range got {
			if len(headlines) >= c.max {
				break
			}
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			headlines = append(headlines, h)
		}
	}

	if len(errs) > 0 && len(errs) == len(c.sources) {
		return nil, fmt.Errorf("headlines %s: %w", ticker, errors.Join(errs...))
	}

	return headlines, nil
}
