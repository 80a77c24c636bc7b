package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/wind-weibull-service/internal/adapter/http"
	"github.com/couchcryptid/wind-weibull-service/internal/domain"
	"github.com/couchcryptid/wind-weibull-service/internal/observability"
	"github.com/couchcryptid/wind-weibull-service/internal/output"
	"github.com/couchcryptid/wind-weibull-service/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type sessionBody struct {
	ID      string              `json:"id"`
	Scale   float64             `json:"scale"`
	Shape   float64             `json:"shape"`
	Range   domain.DisplayRange `json:"range"`
	Mean    float64             `json:"mean"`
	Summary string              `json:"summary"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	registry, err := session.NewRegistry(session.Options{
		MaxSessions: 10,
		Defaults:    domain.DefaultParams(),
		Metrics:     observability.NewMetricsForTesting(),
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, registry, discardLogger())
}

func do(t *testing.T, srv *httpadapter.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func createSession(t *testing.T, srv *httpadapter.Server) sessionBody {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var body sessionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(t, newTestServer(t, fmt.Errorf("registry closed")), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCreateSession_StartsWithDefaults(t *testing.T) {
	body := createSession(t, newTestServer(t, nil))

	assert.NotEmpty(t, body.ID)
	assert.InDelta(t, 7.0, body.Scale, 0)
	assert.InDelta(t, 2.0, body.Shape, 0)
	assert.Equal(t, domain.DisplayRange{Low: 0, High: 25}, body.Range)
	assert.InDelta(t, 6.2036, body.Mean, 1e-4)
	assert.Equal(t, "Mean wind speed 6.20 m/s", body.Summary)
}

func TestSetScale_RecomputesMean(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createSession(t, srv).ID

	rec := do(t, srv, http.MethodPut, "/v1/sessions/"+id+"/scale", `{"value": 10}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body sessionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	want, err := domain.Mean(10, 2)
	require.NoError(t, err)
	assert.InDelta(t, want, body.Mean, 1e-12)

	rec = do(t, srv, http.MethodGet, "/v1/sessions/"+id+"/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"text":%q}`, output.Summary(want)), rec.Body.String())
}

func TestSetShape_RejectsNonPositive(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createSession(t, srv).ID

	for _, payload := range []string{`{"value": 0}`, `{"value": -1.5}`} {
		rec := do(t, srv, http.MethodPut, "/v1/sessions/"+id+"/shape", payload)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, payload)
	}

	rec := do(t, srv, http.MethodGet, "/v1/sessions/"+id, "")
	var body sessionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 2.0, body.Shape, 0)
}

func TestSetValue_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createSession(t, srv).ID

	for _, payload := range []string{``, `not json`, `{}`, `{"value": "seven"}`, `{"value": 7, "extra": 1}`} {
		rec := do(t, srv, http.MethodPut, "/v1/sessions/"+id+"/scale", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload %q", payload)
	}
}

func TestSetRange_LeavesMeanAlone(t *testing.T) {
	srv := newTestServer(t, nil)
	created := createSession(t, srv)

	rec := do(t, srv, http.MethodPut, "/v1/sessions/"+created.ID+"/range", `{"low": 5, "high": 20}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body sessionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.DisplayRange{Low: 5, High: 20}, body.Range)
	assert.InDelta(t, created.Mean, body.Mean, 0)
}

func TestSetRange_Validation(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createSession(t, srv).ID

	cases := map[string]int{
		`{"low": 20, "high": 5}`:  http.StatusUnprocessableEntity,
		`{"low": -1, "high": 5}`:  http.StatusUnprocessableEntity,
		`{"low": 0, "high": 31}`:  http.StatusUnprocessableEntity,
		`{"low": 0}`:              http.StatusBadRequest,
		`{"low": 0, "high": 30}`:  http.StatusOK,
		`{"low": 12, "high": 12}`: http.StatusOK,
	}
	for payload, want := range cases {
		rec := do(t, srv, http.MethodPut, "/v1/sessions/"+id+"/range", payload)
		assert.Equal(t, want, rec.Code, payload)
	}
}

func TestCurve_CoversFullDomainRegardlessOfRange(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createSession(t, srv).ID
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPut, "/v1/sessions/"+id+"/range", `{"low": 5, "high": 20}`).Code)

	rec := do(t, srv, http.MethodGet, "/v1/sessions/"+id+"/curve", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var plot output.Plot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plot))
	require.Len(t, plot.Points, 300)
	assert.InDelta(t, 0.0, plot.Points[0].WindSpeed, 0)
	assert.InDelta(t, 29.9, plot.Points[299].WindSpeed, 1e-9)
	assert.Equal(t, domain.DisplayRange{Low: 5, High: 20}, plot.Visible)
	assert.Equal(t, [2]float64{0, 0.3}, plot.YRange)
	assert.Equal(t, []float64{5, 10, 15}, plot.XTicks)
}

func TestUnknownSessionReturns404(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/v1/sessions/nope", ""},
		{http.MethodGet, "/v1/sessions/nope/curve", ""},
		{http.MethodGet, "/v1/sessions/nope/summary", ""},
		{http.MethodPut, "/v1/sessions/nope/scale", `{"value": 3}`},
		{http.MethodDelete, "/v1/sessions/nope", ""},
	} {
		rec := do(t, srv, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createSession(t, srv).ID

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/v1/sessions/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/v1/sessions/"+id, "").Code)
}
