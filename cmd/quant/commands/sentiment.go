package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-b3/internal/external/gemini"
	"github.com/wonny/aegis-b3/internal/report"
	"github.com/wonny/aegis-b3/internal/s1_universe"
	"github.com/wonny/aegis-b3/internal/sentiment"
)

// sentimentCmd represents the sentiment command
var sentimentCmd = &cobra.Command{
	Use:   "sentiment TICKER...",
	Short: "뉴스 헤드라인 감성 분석",
	Long: `InfoMoney 검색 결과와 Google News RSS에서 헤드라인을 가져와
Gemini로 긍정/중립/부정을 분류합니다. GEMINI_API_KEY 필요.

Example:
  go run ./cmd/quant sentiment PETR4.SA
  go run ./cmd/quant sentiment PETR4.SA VALE3.SA`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSentiment,
}

func init() {
	rootCmd.AddCommand(sentimentCmd)
}

func runSentiment(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext()
	defer stop()

	u, err := s1_universe.NewBuilder(a.log).FromList(args)
	if err != nil {
		return err
	}

	analyzer, err := a.newSentimentAnalyzer(ctx)
	if errors.Is(err, gemini.ErrNoAPIKey) {
		PrintWarning("GEMINI_API_KEY is not set; sentiment analysis is unavailable")
		return err
	}
	if err != nil {
		return err
	}

	results := analyzer.AnalyzeBatch(ctx, u.Tickers)

	console := report.NewConsoleRenderer(os.Stdout)
	console.Title("Análise de Sentimento de Notícias")
	console.Sentiment(results)

	counts := sentiment.Summarize(results)
	PrintInfo(fmt.Sprintf("positive=%d neutral=%d negative=%d",
		counts["positive"], counts["neutral"], counts["negative"]))
	return nil
}
