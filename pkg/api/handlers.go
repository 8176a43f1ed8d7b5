package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/blockfile/pkg/block"
	"github.com/ssargent/blockfile/pkg/catalog"
	"github.com/ssargent/blockfile/pkg/generator"
	"github.com/ssargent/blockfile/pkg/logging"
	"github.com/ssargent/blockfile/pkg/pipeline"
)

const defaultListLimit = 50

// Server holds the API server state
type Server struct {
	runs     RunStore
	config   ServerConfig
	metrics  *Metrics
	registry *prometheus.Registry
	logger   *slog.Logger
}

// NewServer creates a new API server. runs may be nil, in which case runs
// are not recorded and the history endpoints answer 503.
func NewServer(config ServerConfig, runs RunStore, logger *slog.Logger) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		runs:     runs,
		config:   config,
		metrics:  NewMetrics(registry),
		registry: registry,
		logger:   logging.OrDiscard(logger),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	var req PackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	layout := s.config.Layout
	if req.Layout != "" {
		parsed, err := block.ParseMode(req.Layout)
		if err != nil {
			s.metrics.RecordPackFailure("unknown")
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		layout = parsed
	}

	blockSize := req.BlockSize
	if blockSize == 0 {
		blockSize = s.config.BlockSize
	}

	if req.Records < 0 || req.Records > s.config.MaxRecords {
		s.metrics.RecordPackFailure(layout.String())
		sendError(w, fmt.Sprintf("records must be between 0 and %d", s.config.MaxRecords), http.StatusBadRequest)
		return
	}

	records := generator.New(req.Seed).Generate(req.Records)
	res, err := pipeline.Run(r.Context(), records, pipeline.Options{
		Capacity:    blockSize,
		Layout:      layout,
		Concurrency: s.config.Concurrency,
		Logger:      s.logger,
	})
	if err != nil {
		s.metrics.RecordPackFailure(layout.String())
		sendError(w, err.Error(), packErrorStatus(err))
		return
	}
	s.metrics.RecordPack(res)

	resp := PackResponse{
		Layout:    res.Layout,
		BlockSize: res.Header.BlockSize,
		Records:   res.Records,
		Splits:    res.Splits,
		Header:    string(res.Header.Bytes()),
		Report:    res.Report,
	}
	if req.IncludeStream {
		resp.Stream = res.Stream
	}

	if s.runs != nil {
		id, err := s.runs.Save(catalog.NewRun(res, "api", ""))
		if err != nil {
			s.logger.Error("failed to record run", "error", err)
			sendError(w, "Failed to record run", http.StatusInternalServerError)
			return
		}
		resp.RunID = id.String()
	}

	sendSuccess(w, resp)
}

// packErrorStatus maps a packing error onto an HTTP status
func packErrorStatus(err error) int {
	switch {
	case errors.Is(err, block.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, block.ErrCapacityViolation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		sendError(w, "Run catalog is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			sendError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := s.runs.List(limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		sendError(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		sendError(w, "Run catalog is disabled", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.runs.GetString(id)
	if errors.Is(err, catalog.ErrNotFound) {
		sendError(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("failed to read run", "id", id, "error", err)
		sendError(w, "Failed to read run", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, run)
}
