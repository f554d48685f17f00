package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-b3/internal/api"
	"github.com/wonny/aegis-b3/internal/api/handlers"
	"github.com/wonny/aegis-b3/internal/report"
	"github.com/wonny/aegis-b3/internal/selection"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET    /health                  - Health check
  POST   /api/pipeline/run        - 파이프라인 실행
  GET    /api/pipeline/latest     - 마지막 실행 결과
  DELETE /api/pipeline/cache      - 실행 캐시 무효화
  GET    /api/sectors             - 섹터 평균
  GET    /api/screen              - 가치 필터 통과 종목
  GET    /api/report              - PDF 리포트 다운로드
  GET    /api/sentiment/{ticker}  - 뉴스 감성
  GET    /ws/runs                 - 실행 이벤트 스트림
  GET    /metrics                 - Prometheus

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis B3 API Server ===")

	// 1. Wire pipeline
	a, err := newApp(os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	ctx, stop := signalContext()
	defer stop()

	// 2. Universe
	universe, err := a.tickers("")
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	// 3. Run events
	hub := api.NewHub(log)
	a.orchestrator.Subscribe(hub)

	// 4. Handlers
	pipelineHandler := handlers.NewPipelineHandler(
		a.orchestrator,
		a.cache,
		universe,
		selection.NewScreener(a.strategy.Screening.Value, log),
		report.NewPDFRenderer(a.strategy.Report.Title, log),
		log,
	)

	var analyzer handlers.SentimentAnalyzer
	if sa, err := a.newSentimentAnalyzer(ctx); err != nil {
		log.WithError(err).Warn("Sentiment endpoint disabled")
	} else {
		analyzer = sa
	}
	sentimentHandler := handlers.NewSentimentHandler(analyzer, log)

	// 5. Router + server
	m := a.metrics
	if !a.cfg.MetricsEnabled {
		m = nil
	}
	router := api.NewRouter(pipelineHandler, sentimentHandler, hub, m, log)
	server := api.New(a.cfg, log, router)

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.WithField("universe", len(universe)).Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
