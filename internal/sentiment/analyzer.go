// Package sentiment labels recent headlines per ticker.
package sentiment

import (
	"context"
	"time"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/fanout"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/metrics"
)

const metricsStage = "sentiment"

// Config holds analyzer settings
type Config struct {
	Workers      int
	CallTimeout  time.Duration
	MaxHeadlines int
}

// Analyzer fetches headlines and classifies each one
// ⭐ SSOT: 뉴스 감성 결과 생성은 여기서만
type Analyzer struct {
	headlines  contracts.HeadlineSource
	classifier contracts.SentimentClassifier
	config     Config
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// NewAnalyzer creates a new sentiment analyzer
func NewAnalyzer(
	headlines contracts.HeadlineSource,
	classifier contracts.SentimentClassifier,
	config Config,
	m *metrics.Metrics,
	log *logger.Logger,
) *Analyzer {
	if config.MaxHeadlines <= 0 {
		config.MaxHeadlines = 5
	}
	return &Analyzer{
		headlines:  headlines,
		classifier: classifier,
		config:     config,
		metrics:    m,
		logger:     log,
	}
}

// Analyze returns one row per classified headline, in headline order.
// A headline fault yields no rows; a model fault drops that headline.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) []contracts.SentimentResult {
	results := make([]contracts.SentimentResult, 0, a.config.MaxHeadlines)

	headlines, err := a.fetchHeadlines(ctx, ticker)
	if err != nil {
		a.metrics.TickerFault(metricsStage, contracts.FaultDataUnavailable.String())
		a.logger.WithTicker(ticker).WithError(err).Warn("Headlines unavailable")
		return results
	}
	if len(headlines) > a.config.MaxHeadlines {
		headlines = headlines[:a.config.MaxHeadlines]
	}

	for _, h := range headlines {
		label, err := a.classify(ctx, h)
		if err != nil {
			a.metrics.TickerFault(metricsStage, contracts.FaultDataUnavailable.String())
			a.logger.WithTicker(ticker).WithError(err).Warn("Headline classification failed")
			continue
		}
		results = append(results, contracts.SentimentResult{
			Ticker:     ticker,
			Headline:   h,
			Label:      label.Label,
			Confidence: label.Confidence,
		})
	}

	a.logger.WithFields(map[string]interface{}{
		"ticker":     ticker,
		"headlines":  len(headlines),
		"classified": len(results),
	}).Debug("Sentiment analyzed")

	return results
}

// AnalyzeBatch runs Analyze per ticker and concatenates the rows in ticker order
func (a *Analyzer) AnalyzeBatch(ctx context.Context, tickers []string) []contracts.SentimentResult {
	start := time.Now()

	perTicker := fanout.Map(ctx, tickers, a.config.Workers, a.Analyze,
		func(ticker string, err error) []contracts.SentimentResult {
			a.logger.WithTicker(ticker).WithError(err).Error("Sentiment worker panicked")
			return nil
		})

	var out []contracts.SentimentResult
	for _, rows := range perTicker {
		out = append(out, rows...)
	}
	if out == nil {
		out = []contracts.SentimentResult{}
	}

	a.logger.WithFields(map[string]interface{}{
		"tickers":  len(tickers),
		"rows":     len(out),
		"duration": time.Since(start).String(),
	}).Info("Sentiment batch completed")

	return out
}

// Summarize counts rows per label
func Summarize(results []contracts.SentimentResult) map[string]int {
	counts := map[string]int{
		contracts.SentimentPositive: 0,
		contracts.SentimentNeutral:  0,
		contracts.SentimentNegative: 0,
	}
	for _, r := range results {
		counts[r.Label]++
	}
	return counts
}

func (a *Analyzer) fetchHeadlines(ctx context.Context, ticker string) ([]string, error) {
	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.headlines.Headlines(callCtx, ticker)
}

func (a *Analyzer) classify(ctx context.Context, text string) (contracts.SentimentLabel, error) {
	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.classifier.Classify(callCtx, text)
}

func (a *Analyzer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.CallTimeout)
}
