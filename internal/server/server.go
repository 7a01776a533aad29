// Package server exposes the detection and model management HTTP API.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Cain-James/yolov11/internal/config"
	"github.com/Cain-James/yolov11/internal/metrics"
	"github.com/Cain-James/yolov11/internal/model"
	"github.com/Cain-James/yolov11/internal/pipeline"
)

// Server wraps the HTTP components of the detection service.
type Server struct {
	mux       *http.ServeMux
	cfg       *config.Config
	models    *model.Manager
	pipeline  *pipeline.Pipeline
	metrics   *metrics.Metrics
	maxUpload int64
}

// New creates a server with all routes registered.
func New(cfg *config.Config, models *model.Manager, pl *pipeline.Pipeline, m *metrics.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:       mux,
		cfg:       cfg,
		models:    models,
		pipeline:  pl,
		metrics:   m,
		maxUpload: cfg.Server.MaxUploadMB << 20,
	}

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/detect", s.handleDetect)
	mux.HandleFunc("/api/models", s.handleModels)
	mux.HandleFunc("/api/models/switch", s.handleModelSwitch)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start runs the HTTP server on addr, blocking until it exits.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		log.Printf("failed to write healthz response: %v", err)
	}
}

// handleModels rescans the artifact directory and returns the manager
// status snapshot.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.models.Scan()
	writeJSON(w, http.StatusOK, s.models.Status())
}

type switchRequest struct {
	ModelName string `json:"model_name"`
}

type switchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleModelSwitch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, switchResponse{Error: "invalid JSON body"})
		return
	}
	if req.ModelName == "" {
		writeJSON(w, http.StatusBadRequest, switchResponse{Error: "missing model_name"})
		return
	}

	status := s.models.Scan()
	if _, ok := status[req.ModelName]; !ok {
		writeJSON(w, http.StatusNotFound, switchResponse{Error: "model " + req.ModelName + " does not exist"})
		return
	}

	if err := s.models.Load(req.ModelName); err != nil {
		log.Printf("model switch to %q failed: %v", req.ModelName, err)
		writeJSON(w, http.StatusInternalServerError, switchResponse{Error: "model switch failed"})
		return
	}

	s.metrics.CountModelSwitch()
	writeJSON(w, http.StatusOK, switchResponse{
		Success: true,
		Message: "switched to model: " + req.ModelName,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}
