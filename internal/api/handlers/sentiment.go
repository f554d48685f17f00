package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/internal/s1_universe"
	"github.com/wonny/aegis-b3/internal/sentiment"
	"github.com/wonny/aegis-b3/pkg/logger"
)

// SentimentAnalyzer classifies a ticker's headlines
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, ticker string) []contracts.SentimentResult
}

// SentimentHandler serves headline sentiment
type SentimentHandler struct {
	analyzer SentimentAnalyzer
	logger   *logger.Logger
}

// NewSentimentHandler creates a sentiment handler; analyzer may be nil
// when no model is configured
func NewSentimentHandler(analyzer SentimentAnalyzer, log *logger.Logger) *SentimentHandler {
	return &SentimentHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// GetSentiment classifies recent headlines for one ticker
// GET /api/sentiment/{ticker}
func (h *SentimentHandler) GetSentiment(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		respondError(w, http.StatusServiceUnavailable, "Sentiment model not configured")
		return
	}

	u, err := s1_universe.NewBuilder(h.logger).FromList([]string{mux.Vars(r)["ticker"]})
	if err != nil {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	ticker := u.Tickers[0]

	results := h.analyzer.Analyze(r.Context(), ticker)
	respondData(w, map[string]interface{}{
		"ticker":  ticker,
		"count":   len(results),
		"items":   results,
		"summary": sentiment.Summarize(results),
	})
}
