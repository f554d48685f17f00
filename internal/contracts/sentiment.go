package contracts

import "context"

// Sentiment labels returned by a classifier
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentLabel is a classifier verdict for one text
type SentimentLabel struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // 0 ~ 1
}

// SentimentResult is one classified headline
type SentimentResult struct {
	Ticker     string  `json:"ticker"`
	Headline   string  `json:"headline"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// SentimentClassifier labels a short text
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (SentimentLabel, error)
}

// HeadlineSource returns recent headlines for a ticker
type HeadlineSource interface {
	Headlines(ctx context.Context, ticker string) ([]string, error)
}
