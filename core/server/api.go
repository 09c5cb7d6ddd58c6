package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/fuzzy-hvac/base/metrics"
	"example.com/fuzzy-hvac/base/zaplog"
	"example.com/fuzzy-hvac/core/config"
	"example.com/fuzzy-hvac/core/fuzzy"
	"example.com/fuzzy-hvac/core/plant"
	"example.com/fuzzy-hvac/core/sim"
)

const (
	// MaxSamples bounds the number of steps a single request may simulate.
	MaxSamples = 1_000_000

	maxBodyBytes = 1 << 20

	requestIDHeader = "X-Request-ID"
)

var apiMetrics = struct {
	reqsServed prometheus.Counter
	reqsFailed prometheus.Counter
}{
	reqsServed: promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ServerReqsServedN,
		Help: metrics.ServerReqsServedH,
	}),
	reqsFailed: promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ServerReqsFailedN,
		Help: metrics.ServerReqsFailedH,
	}),
}

// SimulateRequest overrides parts of the server's base setup for one run.
// Omitted fields keep the base values.
type SimulateRequest struct {
	Controller   string               `json:"controller"`
	Setpoint     *float64             `json:"setpoint,omitempty"`
	Duration     *float64             `json:"duration,omitempty"`
	Dt           *float64             `json:"dt,omitempty"`
	InitialTemp  *float64             `json:"initial_temp,omitempty"`
	AmbientTemp  *float64             `json:"ambient_temp,omitempty"`
	Method       string               `json:"method,omitempty"`
	Disturbances []config.Disturbance `json:"disturbances,omitempty"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

type runsResponse struct {
	RequestID  string    `json:"request_id"`
	Experiment string    `json:"experiment"`
	Runs       []sim.Run `json:"runs"`
}

type api struct {
	setup sim.Setup
	log   *zap.Logger
}

// NewHandler returns the HTTP API serving simulations built from setup.
func NewHandler(setup sim.Setup, log *zap.Logger) http.Handler {
	log = zaplog.Or(log)
	a := &api{setup: setup, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", a.health).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/simulate", a.simulate).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/compare", a.compare).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(withRequestID(r))
	return handlers.LoggingHandler(zap.NewStdLog(log).Writer(), h)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	apiMetrics.reqsFailed.Inc()
	id := r.Header.Get(requestIDHeader)
	a.log.Info("request failed",
		zap.String("request", id),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	writeJSON(w, status, errorResponse{RequestID: id, Error: err.Error()})
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func checkSamples(s sim.Setup) error {
	if s.Dt > 0 && s.Duration/s.Dt > MaxSamples {
		return fmt.Errorf("%w: more than %d samples", sim.ErrInvalidParameters, MaxSamples)
	}
	return nil
}

func (req SimulateRequest) apply(s sim.Setup) (sim.Setup, error) {
	if req.Setpoint != nil {
		s.Setpoint = *req.Setpoint
	}
	if req.Duration != nil {
		s.Duration = *req.Duration
	}
	if req.Dt != nil {
		s.Dt = *req.Dt
	}
	if req.InitialTemp != nil {
		s.Plant.InitialTemp = *req.InitialTemp
	}
	if req.AmbientTemp != nil {
		s.Plant.AmbientTemp = *req.AmbientTemp
	}
	if req.Method != "" {
		m, err := fuzzy.ParseMethod(req.Method)
		if err != nil {
			return sim.Setup{}, err
		}
		s.Fuzzy.Method = m
	}
	if req.Disturbances != nil {
		s.Disturbances = make(map[float64]float64, len(req.Disturbances))
		for _, d := range req.Disturbances {
			s.Disturbances[d.Time] += d.Delta
		}
	}
	return s, checkSamples(s)
}

func (a *api) simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Controller == "" {
		req.Controller = metrics.ControllerLabelFLC
	}
	s, err := req.apply(a.setup)
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, err)
		return
	}
	run, err := s.RunOne(req.Controller, a.log)
	if err != nil {
		a.fail(w, r, statusFor(err), err)
		return
	}
	apiMetrics.reqsServed.Inc()
	writeJSON(w, http.StatusOK, runsResponse{
		RequestID:  r.Header.Get(requestIDHeader),
		Experiment: "simulate",
		Runs:       []sim.Run{run},
	})
}

func (a *api) compare(w http.ResponseWriter, r *http.Request) {
	experiment := r.URL.Query().Get("experiment")
	if experiment == "" {
		experiment = "controllers"
	}
	var runs []sim.Run
	var err error
	switch experiment {
	case "controllers":
		runs, err = a.setup.CompareControllers(a.log)
	case "disturbances":
		runs, err = a.setup.CompareDisturbances(a.log)
	case "methods":
		runs, err = a.setup.CompareMethods(a.log)
	default:
		a.fail(w, r, http.StatusBadRequest, fmt.Errorf("unknown experiment %q", experiment))
		return
	}
	if err != nil {
		a.fail(w, r, statusFor(err), err)
		return
	}
	apiMetrics.reqsServed.Inc()
	writeJSON(w, http.StatusOK, runsResponse{
		RequestID:  r.Header.Get(requestIDHeader),
		Experiment: experiment,
		Runs:       runs,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sim.ErrUnrecognizedController),
		errors.Is(err, sim.ErrInvalidParameters),
		errors.Is(err, plant.ErrInvalidParams),
		errors.Is(err, fuzzy.ErrConfiguration):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Serve runs the API on addr until ctx is done.
func Serve(ctx context.Context, addr string, setup sim.Setup, log *zap.Logger) error {
	log = zaplog.Or(log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(setup, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("serving API", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
