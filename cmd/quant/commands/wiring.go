package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"github.com/wonny/aegis-b3/internal/brain"
	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/internal/external/fixture"
	"github.com/wonny/aegis-b3/internal/external/gemini"
	"github.com/wonny/aegis-b3/internal/external/news"
	"github.com/wonny/aegis-b3/internal/external/yahoo"
	"github.com/wonny/aegis-b3/internal/s1_universe"
	"github.com/wonny/aegis-b3/internal/selection"
	"github.com/wonny/aegis-b3/internal/sentiment"
	"github.com/wonny/aegis-b3/internal/strategyconfig"
	"github.com/wonny/aegis-b3/pkg/config"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/metrics"
	"github.com/wonny/aegis-b3/pkg/redis"
)

// app holds the wired components shared by every command
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	metrics      *metrics.Metrics
	strategy     *strategyconfig.Config
	strategyHash string
	redis        *redis.Client
	adapter      contracts.DataAdapter
	cache        *brain.RunCache
	orchestrator *brain.Orchestrator
}

// newApp loads config and wires the pipeline.
// Logs go to logOut so command output stays clean.
func newApp(logOut io.Writer) (*app, error) {
	// 1. Load config
	if configFile != "" {
		if err := godotenv.Overload(configFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", configFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if dataSource != "" {
		cfg.Pipeline.DataSource = dataSource
	}
	if strategyFile != "" {
		cfg.Pipeline.StrategyFile = strategyFile
	}

	// 2. Initialize logger
	log := logger.NewWithWriter(logOut, cfg)

	// 3. Strategy
	strategy, err := strategyconfig.LoadOrDefault(cfg.Pipeline.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Strategy warning")
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	// 4. Redis (optional)
	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, using in-memory cache")
		rc, _ = redis.New(&config.Config{})
	}

	// 5. Data adapter
	adapter, err := newAdapter(cfg, log)
	if err != nil {
		rc.Close()
		return nil, err
	}

	// 6. Pipeline
	m := metrics.New()
	cache := brain.NewRunCache(redis.NewCache(rc, "screener"), cfg.Pipeline.CacheTTL, cfg.Pipeline.CacheBucket, log)
	ranker := selection.NewRanker(selection.DefaultScoreWeights(), m, log)
	orch := brain.NewOrchestrator(adapter, ranker, cache, brain.Config{
		Workers:      cfg.Pipeline.Workers,
		CallTimeout:  cfg.Pipeline.CallTimeout,
		LookbackDays: cfg.Pipeline.LookbackDays,
		StrategyHash: hash,
	}, m, log)

	log.WithFields(map[string]interface{}{
		"data_source": cfg.Pipeline.DataSource,
		"strategy":    strategy.Meta.StrategyID,
		"cache":       cache.Backend(),
	}).Debug("Pipeline wired")

	return &app{
		cfg:          cfg,
		log:          log,
		metrics:      m,
		strategy:     strategy,
		strategyHash: hash,
		redis:        rc,
		adapter:      adapter,
		cache:        cache,
		orchestrator: orch,
	}, nil
}

func newAdapter(cfg *config.Config, log *logger.Logger) (contracts.DataAdapter, error) {
	switch cfg.Pipeline.DataSource {
	case config.DataSourceFixture:
		a, err := fixture.Load(cfg.Pipeline.FixtureFile)
		if err != nil {
			return nil, fmt.Errorf("load fixture: %w", err)
		}
		return a, nil
	case config.DataSourceYahoo:
		return yahoo.NewClient(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Pipeline.DataSource)
	}
}

// Close releases external connections
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// tickers returns the --tickers list, or the universe file when empty
func (a *app) tickers(flag string) ([]string, error) {
	builder := s1_universe.NewBuilder(a.log)

	var (
		u   *s1_universe.Universe
		err error
	)
	if list := splitList(flag); len(list) > 0 {
		u, err = builder.FromList(list)
	} else {
		u, err = builder.LoadFile(a.cfg.Pipeline.TickersFile)
	}
	if err != nil {
		return nil, err
	}
	return u.Tickers, nil
}

// newSentimentAnalyzer wires headlines and the Gemini classifier
func (a *app) newSentimentAnalyzer(ctx context.Context) (*sentiment.Analyzer, error) {
	classifier, err := gemini.NewClassifier(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}

	limiter := redis.NewRateLimiter(a.redis, "screener")
	maxHeadlines := a.strategy.Sentiment.MaxHeadlines
	headlines := news.NewCombined(maxHeadlines, a.log,
		news.NewInfoMoney(a.cfg, limiter, a.log),
		news.NewRSS(a.cfg, limiter, a.log),
	)

	return sentiment.NewAnalyzer(headlines, classifier, sentiment.Config{
		Workers:      a.cfg.Pipeline.Workers,
		CallTimeout:  a.cfg.Pipeline.CallTimeout,
		MaxHeadlines: maxHeadlines,
	}, a.metrics, a.log), nil
}
