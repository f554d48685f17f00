package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-b3/internal/report"
	"github.com/wonny/aegis-b3/internal/selection"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "가치 필터 통과 종목",
	Long: `전략 파일의 가치 필터(ROE, P/L, 배당수익률, 부채비율)를
모두 통과한 종목을 ROE 내림차순으로 출력합니다.

Example:
  go run ./cmd/quant screen
  go run ./cmd/quant screen --strategy config/strategy/b3_value.yaml`,
	RunE: runScreen,
}

var screenTickers string

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenTickers, "tickers", "", "쉼표로 구분된 티커 (기본: TICKERS_FILE)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext()
	defer stop()

	result, err := executeRun(ctx, a, screenTickers, "Value Screen")
	if err != nil {
		return err
	}

	screener := selection.NewScreener(a.strategy.Screening.Value, a.log)
	passed := screener.Screen(result.Fundamentals)

	fmt.Println()
	console := report.NewConsoleRenderer(os.Stdout)
	console.Title("Ações que passam nos filtros de valor")
	console.Screen(passed)
	PrintInfo(fmt.Sprintf("%d of %d tickers passed", len(passed), len(result.Fundamentals)))
	return nil
}
