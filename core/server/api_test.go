package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"example.com/fuzzy-hvac/core/server"
	"example.com/fuzzy-hvac/core/sim"
)

type runsResponse struct {
	RequestID  string    `json:"request_id"`
	Experiment string    `json:"experiment"`
	Runs       []sim.Run `json:"runs"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := sim.DefaultSetup()
	s.Duration = 10
	s.Fuzzy.Resolution = 100
	ts := httptest.NewServer(server.NewHandler(s, zap.NewNop()))
	t.Cleanup(ts.Close)
	return ts
}

func TestHealth(t *testing.T) {
	ts := newServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestSimulate(t *testing.T) {
	ts := newServer(t)
	tests := []struct {
		name       string
		body       string
		status     int
		controller string
		samples    int
	}{
		{
			name:       "pid",
			body:       `{"controller": "pid"}`,
			status:     http.StatusOK,
			controller: "pid",
			samples:    21,
		},
		{
			name:       "fuzzy by default",
			body:       `{"duration": 5, "method": "mom"}`,
			status:     http.StatusOK,
			controller: "fuzzy",
			samples:    11,
		},
		{
			name:       "with disturbance",
			body:       `{"controller": "pid", "disturbances": [{"time": 2, "delta": 3}]}`,
			status:     http.StatusOK,
			controller: "pid",
			samples:    21,
		},
		{
			name:   "unknown controller",
			body:   `{"controller": "mpc"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown method",
			body:   `{"method": "median"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "bad dt",
			body:   `{"dt": 0}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "diverging plant",
			body:   `{"controller": "fuzzy", "dt": 20, "duration": 20000, "method": "som"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "too many samples",
			body:   `{"duration": 1e9}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			body:   `{"humidity": 40}`,
			status: http.StatusBadRequest,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/v1/simulate", "application/json", strings.NewReader(test.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, test.status, resp.StatusCode)
			if test.status != http.StatusOK {
				return
			}
			var got runsResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			require.Len(t, got.Runs, 1)
			assert.Equal(t, resp.Header.Get("X-Request-ID"), got.RequestID)
			assert.Equal(t, test.controller, got.Runs[0].Result.Controller)
			assert.Equal(t, test.samples, got.Runs[0].Result.Len())
		})
	}
}

func TestCompare(t *testing.T) {
	ts := newServer(t)
	tests := []struct {
		query string
		runs  int
	}{
		{"", 2},
		{"?experiment=disturbances", 2},
		{"?experiment=methods", 5},
	}
	for _, test := range tests {
		resp, err := http.Get(ts.URL + "/api/v1/compare" + test.query)
		require.NoError(t, err)
		var got runsResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, got.Runs, test.runs, "query %q", test.query)
	}

	resp, err := http.Get(ts.URL + "/api/v1/compare?experiment=tuning")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newServer(t)
	resp, err := http.Post(ts.URL+"/api/v1/simulate", "application/json", strings.NewReader(`{"controller": "pid"}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hvacsim_server_reqs_served")
	assert.Contains(t, string(body), `hvacsim_sim_runs{controller="pid"}`)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/simulate")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
