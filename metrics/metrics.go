// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecommendationsServed counts fully composed recommendation responses.
	RecommendationsServed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recomendashka",
		Name:      "recommendations_served_total",
		Help:      "Number of recommendation responses delivered to users.",
	})

	// CandidatesRejected counts pipeline rejections by reason: not_found,
	// person_mismatch, relevance, duplicate.
	CandidatesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recomendashka",
		Name:      "candidates_rejected_total",
		Help:      "Number of candidate titles rejected during verification.",
	}, []string{"reason"})

	// LLMRetries counts retried LLM chat attempts.
	LLMRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recomendashka",
		Name:      "llm_retries_total",
		Help:      "Number of retried LLM chat attempts.",
	})

	// TMDBRequestDuration observes TMDB API request latency by endpoint.
	TMDBRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recomendashka",
		Name:      "tmdb_request_duration_seconds",
		Help:      "TMDB API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// Serve runs the metrics endpoint until ctx is cancelled. Port 0
// disables the endpoint.
func Serve(ctx context.Context, port int) {
	if port <= 0 {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics endpoint listening", "port", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics endpoint failed", "error", err)
	}
}
