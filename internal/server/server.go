// Package server exposes the churn prediction pipeline over HTTP:
// single and batch prediction, health, model info, Prometheus metrics,
// and a websocket feed of served predictions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"churnd/internal/artifact"
	"churnd/internal/churn"
	"churnd/internal/storage"
)

// Server routes HTTP requests into the prediction pipeline.
type Server struct {
	predictor    *churn.Predictor
	bundle       *artifact.Bundle
	store        *storage.Store // nil disables prediction history
	hub          *Hub
	maxBatchSize int
	server       *http.Server
}

// BatchRequest is the body of POST /predict/batch.
type BatchRequest struct {
	Customers []churn.CustomerRecord `json:"customers"`
}

// BatchResponse carries per-record predictions in request order plus
// the batch summary fields.
type BatchResponse struct {
	Predictions []churn.Prediction `json:"predictions"`
	churn.BatchSummary
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New assembles the server. store may be nil when prediction history
// is disabled.
func New(predictor *churn.Predictor, bundle *artifact.Bundle, store *storage.Store, port, maxBatchSize int, timeout time.Duration) *Server {
	s := &Server{
		predictor:    predictor,
		bundle:       bundle,
		store:        store,
		hub:          NewHub(),
		maxBatchSize: maxBatchSize,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/model/info", s.handleModelInfo)
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/predict/batch", s.handlePredictBatch)
	mux.HandleFunc("/stream", s.hub.ServeWS)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins serving HTTP requests and the stream hub.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)
	log.Info().Str("addr", s.server.Addr).Msg("starting prediction server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "customer churn prediction service",
		"status":  "active",
		"endpoints": map[string]string{
			"POST /predict":       "single customer prediction",
			"POST /predict/batch": "batch prediction",
			"GET /model/info":     "model metadata",
			"GET /health":         "health check",
			"GET /metrics":        "prometheus metrics",
			"GET /stream":         "websocket feed of served predictions",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := s.predictor != nil && s.bundle != nil
	status := http.StatusOK
	health := HealthResponse{Status: "healthy", ModelLoaded: loaded}
	if !loaded {
		status = http.StatusServiceUnavailable
		health.Status = "unhealthy"
	}
	writeJSON(w, status, health)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bundle.Metadata)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var record churn.CustomerRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	pred, err := s.predictor.PredictOne(&record)
	if err != nil {
		writePredictionError(w, err)
		return
	}

	s.record(pred, false)
	s.hub.Publish(pred)
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Customers) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("batch of %d exceeds limit of %d", len(req.Customers), s.maxBatchSize))
		return
	}

	preds, summary, err := s.predictor.PredictMany(req.Customers)
	if err != nil {
		writePredictionError(w, err)
		return
	}

	for _, pred := range preds {
		s.record(pred, true)
		s.hub.Publish(pred)
	}
	writeJSON(w, http.StatusOK, BatchResponse{Predictions: preds, BatchSummary: summary})
}

// record appends the prediction to history when a store is configured.
// History is best effort: a write failure is logged, never surfaced.
func (s *Server) record(pred churn.Prediction, batch bool) {
	if s.store == nil {
		return
	}
	err := s.store.StorePrediction(storage.PredictionRecord{
		Timestamp:    time.Now(),
		Probability:  pred.Probability,
		Prediction:   pred.ChurnPrediction,
		Label:        pred.Label,
		RiskTier:     pred.RiskTier,
		ModelVersion: s.bundle.Metadata.Version,
		Batch:        batch,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to store prediction record")
	}
}

// writePredictionError maps pipeline errors onto HTTP statuses: bad
// input is the caller's problem, artifact drift is ours.
func writePredictionError(w http.ResponseWriter, err error) {
	var ve *churn.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	log.Error().Err(err).Msg("prediction failed")
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
