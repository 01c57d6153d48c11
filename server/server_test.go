package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/sortbench/harness"
	"github.com/weiihann/sortbench/workload"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := DefaultConfig()
	cfg.MaxMonths = 12
	cfg.MaxDays = 31
	cfg.MaxStartCount = 500
	cfg.MaxArraySize = 1000

	return New(cfg, workload.DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	return rec
}

func decodeResults(t *testing.T, rec *httptest.ResponseRecorder) harness.Results {
	t.Helper()

	res, err := harness.ReadResults(rec.Body)
	require.NoError(t, err)

	return res
}

func TestBenchmarkDefaults(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/benchmark", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decodeResults(t, rec)
	require.Len(t, res.Months, 4)

	for i, m := range res.Months {
		assert.Equal(t, i+1, m.Month)
		assert.Len(t, m.Days, 14)
		assert.Equal(t, 50, m.Sizes[0])
	}
}

func TestBenchmarkEmptyObject(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/benchmark", "{}")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeResults(t, rec).Months, 4)
}

func TestBenchmarkParams(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/benchmark",
		`{"months": 1, "days": 3, "start_count": 5, "seed": 42}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var raw map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw, "month_1")

	for _, field := range []string{"days", "sizes", "insertion_times", "merge_times"} {
		assert.Contains(t, raw["month_1"], field)
	}

	res, err := harness.ReadResults(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	require.Len(t, res.Months, 1)

	m := res.Months[0]
	assert.Equal(t, []string{"day_1", "day_2", "day_3"}, m.Days)
	assert.Equal(t, 5, m.Sizes[0])
	assert.Greater(t, m.Sizes[1], m.Sizes[0])
	assert.Greater(t, m.Sizes[2], m.Sizes[1])
}

func TestBenchmarkSeedDeterministicSizes(t *testing.T) {
	s := newTestServer(t)
	body := `{"months": 2, "days": 10, "start_count": 40, "seed": 7}`

	first := decodeResults(t, do(t, s, http.MethodPost, "/api/benchmark", body))
	second := decodeResults(t, do(t, s, http.MethodPost, "/api/benchmark", body))

	for i := range first.Months {
		assert.Equal(t, first.Months[i].Sizes, second.Months[i].Sizes)
	}
}

func TestBenchmarkZeroMonths(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/benchmark", `{"months": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestBenchmarkErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"months": `, http.StatusBadRequest},
		{"wrong type", `{"months": "four"}`, http.StatusBadRequest},
		{"negative months", `{"months": -1}`, http.StatusBadRequest},
		{"negative start", `{"start_count": -5}`, http.StatusBadRequest},
		{"too many months", `{"months": 13}`, http.StatusUnprocessableEntity},
		{"too many days", `{"days": 32}`, http.StatusUnprocessableEntity},
		{"start too large", `{"start_count": 501}`, http.StatusUnprocessableEntity},
		// 500 * 1.05^30 exceeds the 1000 value array cap.
		{"projected growth", `{"days": 31, "start_count": 500}`, http.StatusUnprocessableEntity},
	}

	s := newTestServer(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/benchmark", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestBenchmarkDefaultLimits(t *testing.T) {
	s := New(DefaultConfig(), workload.DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name string
		body string
	}{
		{"long growth", `{"days": 366, "start_count": 20000}`},
		{"long growth small start", `{"months": 1, "days": 366, "start_count": 50}`},
		{"many months", `{"months": 120, "days": 100, "start_count": 1000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/benchmark", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), "exceeds server limits")
		})
	}
}

func TestSimulationWithinDefaultLimits(t *testing.T) {
	s := New(DefaultConfig(), workload.DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	cfg, err := s.simulation(benchmarkRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Months)
	assert.Equal(t, 14, cfg.Days)
	assert.Equal(t, 50, cfg.StartCount)
}

func TestChartsPage(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/?months=2&days=3&start_count=5&seed=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Benchmark: Month 2")
	assert.Contains(t, rec.Body.String(), "Average over 2 months")
}

func TestChartsPageErrors(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest,
		do(t, s, http.MethodGet, "/?months=abc", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		do(t, s, http.MethodGet, "/?days=400", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, s, http.MethodGet, "/?months=0", "").Code)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(workload.ErrInvalidArgument))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(errLimit))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func TestListenAndServeShutdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	s := New(cfg, workload.DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, s.ListenAndServe(ctx))
}
