package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/moolen/upgradelens/internal/cache"
	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/metrics"
	"github.com/moolen/upgradelens/internal/models"
)

// Cache keys are shared by every endpoint; the breaking change view is
// derived from the cached full result.
const cacheOperation = "analyze"

// AnalyzeRequest is the body of the analysis endpoints.
type AnalyzeRequest struct {
	Text     string          `json:"text"`
	Entities []models.Entity `json:"entities,omitempty"`
}

// BatchRequest is the body of /v1/analyze/batch.
type BatchRequest struct {
	Documents []AnalyzeRequest `json:"documents"`
}

// Envelope wraps every analysis response.
type Envelope struct {
	AnalysisID       string      `json:"analysis_id"`
	ProcessingTimeMs float64     `json:"processing_time_ms"`
	Cached           bool        `json:"cached"`
	Result           interface{} `json:"result"`
}

// BatchResponse lists one envelope per document, in request order.
type BatchResponse struct {
	Results []Envelope `json:"results"`
}

type requestError struct {
	status  int
	code    ErrorCode
	message string
}

func (e *requestError) Error() string { return e.message }

func (s *Server) decode(w http.ResponseWriter, r *http.Request, into interface{}) *requestError {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(into); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &requestError{http.StatusRequestEntityTooLarge, ErrorCodeInvalidRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		case models.IsInvalidEntityError(err):
			return &requestError{http.StatusBadRequest, ErrorCodeInvalidEntity, err.Error()}
		default:
			return &requestError{http.StatusBadRequest, ErrorCodeInvalidRequest, fmt.Sprintf("invalid JSON body: %v", err)}
		}
	}
	return nil
}

// analyze runs or fetches one analysis. The returned result belongs to the
// caller.
func (s *Server) analyze(ctx context.Context, operation string, req AnalyzeRequest) (*models.AnalysisResult, bool, error) {
	var key string
	if s.cache != nil {
		key = cache.Key(cacheOperation, req.Text, req.Entities)
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.ObserveCache(true)
			out := *cached
			return &out, true, nil
		}
		s.metrics.ObserveCache(false)
	}

	begin := time.Now()
	r, err := s.holder.Engine().Analyze(ctx, req.Text, req.Entities)
	if err != nil {
		return nil, false, err
	}
	s.metrics.ObserveAnalysis(operation, time.Since(begin), r)

	if s.cache != nil {
		s.cache.Put(key, r)
		out := *r
		return &out, false, nil
	}
	return r, false, nil
}

func (s *Server) fail(w http.ResponseWriter, operation string, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		s.metrics.ObserveFailure(operation, metrics.OutcomeInvalid)
		respondWithError(w, reqErr.status, reqErr.code, reqErr.message)
	case models.IsInvalidEntityError(err):
		s.metrics.ObserveFailure(operation, metrics.OutcomeInvalid)
		respondWithError(w, http.StatusBadRequest, ErrorCodeInvalidEntity, err.Error())
	default:
		s.metrics.ObserveFailure(operation, metrics.OutcomeError)
		s.logger.ErrorWithErr("Analysis failed", err)
		respondWithError(w, http.StatusInternalServerError, ErrorCodeInternalError, "analysis failed")
	}
}

func elapsedMs(begin time.Time) float64 {
	return float64(time.Since(begin).Microseconds()) / 1000
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	var req AnalyzeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, "analyze", err)
		return
	}

	result, cached, err := s.analyze(r.Context(), "analyze", req)
	if err != nil {
		s.fail(w, "analyze", err)
		return
	}
	result.AnalysisID = uuid.NewString()

	s.logger.WithContext(r.Context()).DebugWithFields("Analyze request served",
		logging.Field("analysis_id", result.AnalysisID),
		logging.Field("cached", cached))
	respondJSON(w, http.StatusOK, Envelope{
		AnalysisID:       result.AnalysisID,
		ProcessingTimeMs: elapsedMs(begin),
		Cached:           cached,
		Result:           result,
	})
}

func (s *Server) handleBreakingChanges(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	var req AnalyzeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, "breaking_changes", err)
		return
	}

	result, cached, err := s.analyze(r.Context(), "breaking_changes", req)
	if err != nil {
		s.fail(w, "breaking_changes", err)
		return
	}
	result.AnalysisID = uuid.NewString()
	report := s.holder.Engine().Processor().DeriveBreakingChangeReport(result)

	respondJSON(w, http.StatusOK, Envelope{
		AnalysisID:       result.AnalysisID,
		ProcessingTimeMs: elapsedMs(begin),
		Cached:           cached,
		Result:           report,
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	var req BatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, "batch", err)
		return
	}
	if len(req.Documents) == 0 {
		s.fail(w, "batch", &requestError{http.StatusBadRequest, ErrorCodeInvalidRequest, "documents must not be empty"})
		return
	}
	if len(req.Documents) > MaxBatchDocuments {
		s.fail(w, "batch", &requestError{http.StatusBadRequest, ErrorCodeInvalidRequest,
			fmt.Sprintf("at most %d documents per batch", MaxBatchDocuments)})
		return
	}

	results := make([]Envelope, len(req.Documents))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(s.opts.BatchConcurrency)
	for i, doc := range req.Documents {
		g.Go(func() error {
			docBegin := time.Now()
			result, cached, err := s.analyze(ctx, "batch", doc)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			result.AnalysisID = uuid.NewString()
			results[i] = Envelope{
				AnalysisID:       result.AnalysisID,
				ProcessingTimeMs: elapsedMs(docBegin),
				Cached:           cached,
				Result:           result,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(w, "batch", err)
		return
	}

	s.logger.InfoWithFields("Batch analyzed",
		logging.Field("documents", len(results)),
		logging.Field("duration_ms", elapsedMs(begin)))
	respondJSON(w, http.StatusOK, BatchResponse{Results: results})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]interface{}{
		"status":         "ok",
		"schema_version": s.holder.Engine().Registry().Spec().SchemaVersion,
	}
	if s.cache != nil {
		body["cache"] = s.cache.Stats()
	}
	respondJSON(w, http.StatusOK, body)
}
