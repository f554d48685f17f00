// Package gemini classifies headline sentiment with the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/config"
	"github.com/wonny/aegis-b3/pkg/logger"
)

// DefaultRequestsPerMinute keeps the free tier quota
const DefaultRequestsPerMinute = 15

// ErrNoAPIKey is returned when GEMINI_API_KEY is empty
var ErrNoAPIKey = errors.New("gemini api key not configured")

const systemPrompt = `You are a financial news sentiment classifier for Brazilian equities.
Classify the headline as "positive", "neutral" or "negative" for the stock's investors.
Reply with JSON only: {"label": "<label>", "confidence": <number between 0 and 1>}`

// generator is the subset of *genai.Models the classifier uses
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Classifier implements contracts.SentimentClassifier
// ⭐ SSOT: 감성 분류는 이 분류기에서만
type Classifier struct {
	models  generator
	model   string
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewClassifier creates a Gemini-backed classifier
func NewClassifier(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Classifier, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newClassifier(client.Models, cfg.Gemini.Model, log), nil
}

func newClassifier(models generator, model string, log *logger.Logger) *Classifier {
	return &Classifier{
		models:  models,
		model:   model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/DefaultRequestsPerMinute), 1),
		logger:  log,
	}
}

// Classify labels one headline
func (c *Classifier) Classify(ctx context.Context, text string) (contracts.SentimentLabel, error) {
	if strings.TrimSpace(text) == "" {
		return contracts.SentimentLabel{}, errors.New("empty text")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return contracts.SentimentLabel{}, fmt.Errorf("gemini rate limit: %w", err)
	}

	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0),
		})
	if err != nil {
		return contracts.SentimentLabel{}, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return contracts.SentimentLabel{}, errors.New("gemini generate: empty response")
	}

	label, err := parseLabel(resp.Text())
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"model":    c.model,
			"headline": text,
		}).WithError(err).Warn("Unparseable sentiment response")
		return contracts.SentimentLabel{}, err
	}

	return label, nil
}

type labelResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// parseLabel decodes the model's JSON reply
func parseLabel(raw string) (contracts.SentimentLabel, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.Trim(raw, "`\n ")
	if raw == "" {
		return contracts.SentimentLabel{}, errors.New("empty model reply")
	}

	var out labelResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return contracts.SentimentLabel{}, fmt.Errorf("decode model reply: %w", err)
	}

	label, ok := normalizeLabel(out.Label)
	if !ok {
		return contracts.SentimentLabel{}, fmt.Errorf("unknown sentiment label %q", out.Label)
	}

	conf := out.Confidence
	if math.IsNaN(conf) {
		conf = 0
	}
	conf = math.Max(0, math.Min(1, conf))

	return contracts.SentimentLabel{Label: label, Confidence: conf}, nil
}

func normalizeLabel(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "positivo", "pos":
		return contracts.SentimentPositive, true
	case "neutral", "neutro", "neu":
		return contracts.SentimentNeutral, true
	case "negative", "negativo", "neg":
		return contracts.SentimentNegative, true
	}
	return "", false
}
