package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/wonny/aegis-b3/internal/brain"
	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/internal/report"
	"github.com/wonny/aegis-b3/internal/selection"
	"github.com/wonny/aegis-b3/pkg/logger"
)

// Pipeline runs the screening pipeline
type Pipeline interface {
	Run(ctx context.Context, tickers []string, opts ...brain.RunOption) (*contracts.RunResult, error)
}

// CacheInvalidator drops cached runs
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tickers []string) (int, error)
	InvalidateAll(ctx context.Context) (int, error)
}

// PipelineHandler handles pipeline-related API endpoints
// ⭐ SSOT: 파이프라인 API 핸들러는 여기서만
type PipelineHandler struct {
	pipeline Pipeline
	cache    CacheInvalidator
	universe []string
	screener *selection.Screener
	renderer *report.PDFRenderer
	logger   *logger.Logger

	mu     sync.RWMutex
	latest *contracts.RunResult
}

// NewPipelineHandler creates a new pipeline handler; cache may be nil
func NewPipelineHandler(
	pipeline Pipeline,
	cache CacheInvalidator,
	universe []string,
	screener *selection.Screener,
	renderer *report.PDFRenderer,
	log *logger.Logger,
) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		cache:    cache,
		universe: universe,
		screener: screener,
		renderer: renderer,
		logger:   log,
	}
}

// RunRequest is the body of POST /api/pipeline/run
type RunRequest struct {
	Tickers []string `json:"tickers"`
	NoCache bool     `json:"no_cache"`
}

// Run executes the pipeline
// POST /api/pipeline/run  {"tickers": [...], "no_cache": false}
// 빈 tickers → 기본 유니버스
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read body")
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
	}

	var opts []brain.RunOption
	if req.NoCache {
		opts = append(opts, brain.WithoutCache())
	}

	result, ok := h.run(w, r, req.Tickers, opts...)
	if !ok {
		return
	}
	respondData(w, result)
}

// GetLatest returns the most recent run served by this process
// GET /api/pipeline/latest
func (h *PipelineHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()

	if latest == nil {
		respondError(w, http.StatusNotFound, "No pipeline run yet")
		return
	}
	respondData(w, latest)
}

// InvalidateCache drops cached runs
// DELETE /api/pipeline/cache?tickers=A,B (없으면 전체)
func (h *PipelineHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondData(w, map[string]interface{}{"deleted": 0})
		return
	}

	var (
		deleted int
		err     error
	)
	if tickers := splitTickers(r.URL.Query().Get("tickers")); len(tickers) > 0 {
		deleted, err = h.cache.Invalidate(r.Context(), tickers)
	} else {
		deleted, err = h.cache.InvalidateAll(r.Context())
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to invalidate run cache")
		respondError(w, http.StatusInternalServerError, "Failed to invalidate cache")
		return
	}

	respondData(w, map[string]interface{}{"deleted": deleted})
}

// GetSectors returns per-sector means
// GET /api/sectors?tickers=A,B
func (h *PipelineHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r, splitTickers(r.URL.Query().Get("tickers")))
	if !ok {
		return
	}
	respondData(w, map[string]interface{}{
		"run_id":  result.RunID,
		"count":   len(result.Sectors),
		"sectors": result.Sectors,
	})
}

// GetScreen returns the tickers passing the value filters
// GET /api/screen?tickers=A,B
func (h *PipelineHandler) GetScreen(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r, splitTickers(r.URL.Query().Get("tickers")))
	if !ok {
		return
	}
	passed := h.screener.Screen(result.Fundamentals)
	respondData(w, map[string]interface{}{
		"run_id": result.RunID,
		"count":  len(passed),
		"items":  passed,
	})
}

// GetReport returns the ranked table as a PDF download
// GET /api/report?tickers=A,B
func (h *PipelineHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r, splitTickers(r.URL.Query().Get("tickers")))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, result.Table); err != nil {
		h.logger.WithError(err).Error("Failed to render report")
		respondError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="relatorio_%s.pdf"`, result.RunID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// run executes the pipeline and writes the error response itself on failure
func (h *PipelineHandler) run(w http.ResponseWriter, r *http.Request, tickers []string, opts ...brain.RunOption) (*contracts.RunResult, bool) {
	if len(tickers) == 0 {
		tickers = h.universe
	}

	result, err := h.pipeline.Run(r.Context(), tickers, opts...)
	if err != nil {
		switch {
		case errors.Is(err, contracts.ErrEmptyUniverse):
			respondError(w, http.StatusBadRequest, "No tickers to run")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			respondError(w, http.StatusServiceUnavailable, "Pipeline run cancelled")
		default:
			h.logger.WithError(err).Error("Pipeline run failed")
			respondError(w, http.StatusInternalServerError, "Pipeline run failed")
		}
		return nil, false
	}

	h.mu.Lock()
	h.latest = result
	h.mu.Unlock()

	return result, true
}
