package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/pipeline"
	"github.com/matzehuels/fsdcheck/pkg/render/nodelink"
	"github.com/matzehuels/fsdcheck/pkg/report"
	"github.com/matzehuels/fsdcheck/pkg/store"
)

const graphDoc = `{
  "modules": [{"path": "src/app/index.ts"}, {"path": "src/shared/lib/a.ts"}],
  "edges": [{"from": "src/shared/lib/a.ts", "to": "src/app/index.ts"}]
}`

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	runner.Renderer = nodelink.RendererFunc(func(context.Context, string) ([]byte, error) {
		return []byte("<svg/>"), nil
	})
	st := store.NewMemoryStore()
	return New(Options{Runner: runner, Store: st, Logger: logger}), st
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCheckAndFetchReport(t *testing.T) {
	s, st := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/check", CheckRequest{
		Source:  "web",
		Graph:   json.RawMessage(graphDoc),
		Formats: []string{"svg", "dot"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Report.Passed)
	assert.Equal(t, "web", resp.Report.Source)
	assert.Equal(t, "<svg/>", string(resp.Artifacts["svg"]))
	assert.Contains(t, string(resp.Artifacts["dot"]), "digraph")

	saved, err := st.Get(context.Background(), resp.Report.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Report.ID, saved.ID)

	rec = do(t, s, http.MethodGet, "/v1/reports/"+resp.Report.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, resp.Report.Summary, got.Summary)

	rec = do(t, s, http.MethodGet, "/v1/reports?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCheckWithInlineConfig(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/check", CheckRequest{
		Graph:  json.RawMessage(graphDoc),
		Config: json.RawMessage(`{"options": {"root": "src", "preset": ""}}`),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Report.Passed, "no rules without the preset")
}

func TestCheckErrors(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name string
		body any
		code errors.Code
	}{
		{"missing graph", CheckRequest{}, errors.ErrCodeInvalidInput},
		{"unknown field", map[string]any{"graph": json.RawMessage(graphDoc), "colour": 1}, errors.ErrCodeInvalidInput},
		{"bad format", CheckRequest{Graph: json.RawMessage(graphDoc), Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad config", CheckRequest{Graph: json.RawMessage(graphDoc), Config: json.RawMessage(`{"options": {"preset": "mvc"}}`)}, errors.ErrCodeConfig},
		{"dangling edge", CheckRequest{Graph: json.RawMessage(`{"modules": [{"path": "a"}], "edges": [{"from": "a", "to": "b"}]}`)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/check", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			if tt.code != "" {
				var er errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
				assert.Equal(t, tt.code, er.Code)
			}
		})
	}
}

func TestReportNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/v1/reports/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/reports?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New(errors.ErrCodeInternal, "boom")))
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.New(errors.ErrCodeUnknownModule, "x")))
}
