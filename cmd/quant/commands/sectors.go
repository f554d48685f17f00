package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-b3/internal/report"
)

// sectorsCmd represents the sectors command
var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "섹터별 평균 지표",
	Long: `섹터별 ROE, P/L, 배당수익률, 부채비율 평균을 출력합니다.
값이 없는 항목은 평균에서 제외됩니다.

Example:
  go run ./cmd/quant sectors
  go run ./cmd/quant sectors --tickers PETR4.SA,CMIG4.SA`,
	RunE: runSectors,
}

var sectorsTickers string

func init() {
	rootCmd.AddCommand(sectorsCmd)

	sectorsCmd.Flags().StringVar(&sectorsTickers, "tickers", "", "쉼표로 구분된 티커 (기본: TICKERS_FILE)")
}

func runSectors(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext()
	defer stop()

	result, err := executeRun(ctx, a, sectorsTickers, "Sector Averages")
	if err != nil {
		return err
	}

	fmt.Println()
	console := report.NewConsoleRenderer(os.Stdout)
	console.Title("Avaliação Setorial")
	console.Sectors(result.Sectors)
	return nil
}
