package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-b3/internal/brain"
	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/internal/report"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "스크리닝 파이프라인 실행",
	Long: `티커 목록에 대해 파이프라인을 한 번 실행하고 순위표를 출력합니다.

Score = 100·ROE + 1.5·DY − P/E − 10·D/E + 25·Buy − 5·Beta
(Beta 없음 → 1, 펀더멘털 누락 → 제외)

Example:
  go run ./cmd/quant run
  go run ./cmd/quant run --tickers PETR4.SA,VALE3.SA
  go run ./cmd/quant run --pdf relatorio.pdf --no-cache`,
	RunE: runPipeline,
}

var (
	runTickers string
	runPDF     string
	runNoCache bool
	runTop     int
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runTickers, "tickers", "", "쉼표로 구분된 티커 (기본: TICKERS_FILE)")
	runCmd.Flags().StringVar(&runPDF, "pdf", "", "PDF 리포트 저장 경로")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "캐시 조회 생략")
	runCmd.Flags().IntVar(&runTop, "top", 0, "상위 N개만 출력 (0 = 전략 파일 값)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext()
	defer stop()

	var opts []brain.RunOption
	if runNoCache {
		opts = append(opts, brain.WithoutCache())
	}

	result, err := executeRun(ctx, a, runTickers, "Screening Run", opts...)
	if err != nil {
		return err
	}

	top := runTop
	if top <= 0 {
		top = a.strategy.Report.TopN
	}

	fmt.Println()
	console := report.NewConsoleRenderer(os.Stdout)
	console.Title(a.strategy.Report.Title)
	console.Scored(result.Table, top)

	fmt.Println()
	PrintStageSummary(result.Stages)
	PrintRunCompletion(result)

	if runPDF != "" {
		renderer := report.NewPDFRenderer(a.strategy.Report.Title, a.log)
		if err := renderer.RenderFile(runPDF, result.Table); err != nil {
			return err
		}
		PrintSuccess(fmt.Sprintf("PDF saved: %s", runPDF))
	}

	return nil
}

// executeRun resolves tickers, runs the pipeline and prints the header
func executeRun(ctx context.Context, a *app, tickerFlag, title string, opts ...brain.RunOption) (*contracts.RunResult, error) {
	tickers, err := a.tickers(tickerFlag)
	if err != nil {
		return nil, fmt.Errorf("resolve tickers: %w", err)
	}

	result, err := a.orchestrator.Run(ctx, tickers, opts...)
	if err != nil {
		return nil, fmt.Errorf("pipeline run: %w", err)
	}

	PrintRunHeader(RunMetadata{
		Command:    title,
		RunID:      result.RunID,
		Strategy:   a.strategy.Meta.StrategyID,
		DataSource: a.cfg.Pipeline.DataSource,
		Tickers:    len(tickers),
		Cached:     result.Cached,
		StartedAt:  result.StartedAt,
	})

	return result, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
