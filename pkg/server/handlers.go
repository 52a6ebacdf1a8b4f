package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/fsdcheck/pkg/buildinfo"
	"github.com/matzehuels/fsdcheck/pkg/collapse"
	"github.com/matzehuels/fsdcheck/pkg/config"
	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/pipeline"
	"github.com/matzehuels/fsdcheck/pkg/report"
)

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	// Source labels the graph in the report.
	Source string `json:"source,omitempty"`

	// Graph is a native or dependency-cruiser graph document.
	Graph json.RawMessage `json:"graph"`

	// Config is a policy document in JSON form. The server default is used
	// when it is absent.
	Config json.RawMessage `json:"config,omitempty"`

	Formats  []string       `json:"formats,omitempty"`
	Collapse *collapse.Spec `json:"collapse,omitempty"`
	Clusters bool           `json:"clusters,omitempty"`
	Refresh  bool           `json:"refresh,omitempty"`
}

// CheckResponse is the body returned by POST /v1/check. Artifacts are
// base64-encoded by encoding/json.
type CheckResponse struct {
	Report    *report.Report    `json:"report"`
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
	Cached    bool              `json:"cached"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if isEmptyJSON(req.Graph) {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "graph is required"))
		return
	}

	cfg := s.config
	if !isEmptyJSON(req.Config) {
		var err error
		if cfg, err = config.Parse(req.Config, "json"); err != nil {
			writeError(w, err)
			return
		}
	}

	g, err := s.runner.ImportBytes(ctx, req.Source, req.Graph, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.runner.Check(ctx, g, cfg, pipeline.Options{
		Source:   req.Source,
		Formats:  req.Formats,
		Collapse: req.Collapse,
		Clusters: req.Clusters,
		Refresh:  req.Refresh,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Save(ctx, res.Report); err != nil {
		s.logger.Error("save report", "id", res.Report.ID, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CheckResponse{
		Report:    res.Report,
		Artifacts: res.Artifacts,
		Cached:    res.CacheInfo.ReportHit,
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := s.store.Get(r.Context(), id)
	if errors.Is(err, errors.ErrCodeNotFound) {
		if cached, ok := s.runner.CachedReport(r.Context(), id); ok {
			rep, err = cached, nil
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	reps, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if reps == nil {
		reps = []*report.Report{}
	}
	writeJSON(w, http.StatusOK, reps)
}

func isEmptyJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Server", buildinfo.Short())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.IsConfiguration(err),
		errors.Is(err, errors.ErrCodeInvalidInput),
		errors.Is(err, errors.ErrCodeInvalidFormat),
		errors.Is(err, errors.ErrCodeInvalidPath):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
