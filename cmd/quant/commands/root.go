package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile   string
	env          string
	verbose      bool
	dataSource   string
	strategyFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Aegis B3 - 가치/기술/리스크 결합 종목 스크리너",
	Long: `Aegis B3 Screener CLI

B3 종목을 펀더멘털, 기술적 신호, 리스크로 평가해
하나의 점수로 순위를 매기고 리포트를 생성합니다.

Pipeline:
  S0 Fundamentals → S2 Technical ∥ S2 Risk → S3 Scoring → S4 Sectors

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant run
  go run ./cmd/quant run --tickers PETR4.SA,VALE3.SA --pdf relatorio.pdf
  go run ./cmd/quant sectors --data-source fixture
  go run ./cmd/quant screen
  go run ./cmd/quant sentiment PETR4.SA
  go run ./cmd/quant api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production|test)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dataSource, "data-source", "", "data source override (yahoo|fixture)")
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML override")
}
