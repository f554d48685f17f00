package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/aegis-b3/internal/api/handlers"
	"github.com/wonny/aegis-b3/pkg/logger"
	"github.com/wonny/aegis-b3/pkg/metrics"
)

// NewRouter creates and configures the HTTP router.
// m may be nil (no /metrics).
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(
	pipeline *handlers.PipelineHandler,
	sentiment *handlers.SentimentHandler,
	hub *Hub,
	m *metrics.Metrics,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Monitoring
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}

	// Run events
	r.HandleFunc("/ws/runs", hub.ServeWS).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Pipeline endpoints
	api.HandleFunc("/pipeline/run", pipeline.Run).Methods("POST")
	api.HandleFunc("/pipeline/latest", pipeline.GetLatest).Methods("GET")
	api.HandleFunc("/pipeline/cache", pipeline.InvalidateCache).Methods("DELETE")
	api.HandleFunc("/sectors", pipeline.GetSectors).Methods("GET")
	api.HandleFunc("/screen", pipeline.GetScreen).Methods("GET")
	api.HandleFunc("/report", pipeline.GetReport).Methods("GET")

	// Sentiment
	api.HandleFunc("/sentiment/{ticker}", sentiment.GetSentiment).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "aegis-b3-api",
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the wrapped writer to http.ResponseController
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// 웹소켓 업그레이드는 Hijacker가 필요하므로 감싸지 않음
			if r.URL.Path == "/ws/runs" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
