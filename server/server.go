// Package server exposes the generate-and-benchmark pipeline over HTTP.
//
// Routes:
//
//	POST /api/benchmark  JSON body {months, days, start_count, seed}, all optional
//	GET  /               chart page, same parameters as query string
//	GET  /healthz        liveness probe
//
// Every request generates and benchmarks its own dataset; nothing is
// shared between requests.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/weiihann/sortbench/harness"
	"github.com/weiihann/sortbench/report"
	"github.com/weiihann/sortbench/workload"
)

// RequestIDHeader carries the per-request id on requests and responses.
const RequestIDHeader = "X-Request-ID"

var errLimit = errors.New("request exceeds server limits")

// Config holds the HTTP server settings and request defaults.
//
// The Max fields bound a single request; zero disables a bound. Arrays
// grow geometrically, so MaxArraySize, MaxElements and MaxSortWork are
// checked against workload.Project rather than the raw counts.
type Config struct {
	Addr            string        `yaml:"addr"`
	Months          int           `yaml:"months"`
	Days            int           `yaml:"days"`
	StartCount      int           `yaml:"start_count"`
	MaxMonths       int           `yaml:"max_months"`
	MaxDays         int           `yaml:"max_days"`
	MaxStartCount   int           `yaml:"max_start_count"`
	MaxArraySize    int           `yaml:"max_array_size"`
	MaxElements     int           `yaml:"max_elements"`
	MaxSortWork     float64       `yaml:"max_sort_work"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the web defaults: 4 months of 14 days starting
// from 50 values.
func DefaultConfig() Config {
	return Config{
		Addr:            ":5000",
		Months:          4,
		Days:            14,
		StartCount:      50,
		MaxMonths:       120,
		MaxDays:         366,
		MaxStartCount:   20000,
		MaxArraySize:    50000,
		MaxElements:     5_000_000,
		MaxSortWork:     1e10,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server serves benchmark requests.
type Server struct {
	cfg    Config
	sim    workload.Config
	base   *slog.Logger
	logger *slog.Logger
	engine *gin.Engine
}

// New creates a Server. sim supplies the value and growth bounds and the
// growth mode; counts and seed come from each request.
func New(cfg Config, sim workload.Config, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		sim:    sim,
		base:   logger,
		logger: logger.With(slog.String("component", "server")),
	}

	engine := gin.New()
	engine.Use(s.requestID(), s.accessLog(), gin.CustomRecovery(s.onPanic))

	engine.GET("/healthz", s.health)
	engine.GET("/", s.charts)
	engine.POST("/api/benchmark", s.benchmark)

	s.engine = engine

	return s
}

// Handler returns the HTTP handler for s.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on cfg.Addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.InfoContext(ctx, "listening", slog.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

type benchmarkRequest struct {
	Months     *int   `json:"months" form:"months"`
	Days       *int   `json:"days" form:"days"`
	StartCount *int   `json:"start_count" form:"start_count"`
	Seed       *int64 `json:"seed" form:"seed"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) benchmark(c *gin.Context) {
	var req benchmarkRequest

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			s.fail(c, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
	}

	results, err := s.run(c, req)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (s *Server) charts(c *gin.Context) {
	var req benchmarkRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("decode query: %w", err))
		return
	}

	results, err := s.run(c, req)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	if len(results.Months) == 0 {
		s.fail(c, http.StatusBadRequest, errors.New("nothing to chart: months and days must be positive"))
		return
	}

	var buf bytes.Buffer
	if err := report.RenderCharts(&buf, results); err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) run(c *gin.Context, req benchmarkRequest) (harness.Results, error) {
	cfg, err := s.simulation(req)
	if err != nil {
		return harness.Results{}, err
	}

	ds, err := workload.NewGenerator(cfg).Generate()
	if err != nil {
		return harness.Results{}, fmt.Errorf("generate: %w", err)
	}

	logger := s.base.With(slog.String("request_id", c.GetString("request_id")))

	results, err := harness.NewRunner(logger).Run(c.Request.Context(), ds)
	if err != nil {
		return harness.Results{}, fmt.Errorf("benchmark: %w", err)
	}

	return results, nil
}

// simulation resolves the request against the defaults and limits.
func (s *Server) simulation(req benchmarkRequest) (workload.Config, error) {
	cfg := s.sim
	cfg.Months = valueOr(req.Months, s.cfg.Months)
	cfg.Days = valueOr(req.Days, s.cfg.Days)
	cfg.StartCount = valueOr(req.StartCount, s.cfg.StartCount)
	cfg.Seed = valueOr(req.Seed, 0)

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	switch {
	case s.cfg.MaxMonths > 0 && cfg.Months > s.cfg.MaxMonths:
		return cfg, fmt.Errorf("%w: months %d > %d", errLimit, cfg.Months, s.cfg.MaxMonths)
	case s.cfg.MaxDays > 0 && cfg.Days > s.cfg.MaxDays:
		return cfg, fmt.Errorf("%w: days %d > %d", errLimit, cfg.Days, s.cfg.MaxDays)
	case s.cfg.MaxStartCount > 0 && cfg.StartCount > s.cfg.MaxStartCount:
		return cfg, fmt.Errorf("%w: start_count %d > %d",
			errLimit, cfg.StartCount, s.cfg.MaxStartCount)
	}

	proj := workload.Project(cfg)

	switch {
	case s.cfg.MaxArraySize > 0 && proj.MaxSize > float64(s.cfg.MaxArraySize):
		return cfg, fmt.Errorf("%w: arrays may grow to %.0f values > %d",
			errLimit, proj.MaxSize, s.cfg.MaxArraySize)
	case s.cfg.MaxElements > 0 && proj.Elements > float64(s.cfg.MaxElements):
		return cfg, fmt.Errorf("%w: dataset may hold %.0f values > %d",
			errLimit, proj.Elements, s.cfg.MaxElements)
	case s.cfg.MaxSortWork > 0 && proj.SortWork > s.cfg.MaxSortWork:
		return cfg, fmt.Errorf("%w: projected sort work %.3g > %.3g",
			errLimit, proj.SortWork, s.cfg.MaxSortWork)
	}

	return cfg, nil
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("request_id", c.GetString("request_id")),
			slog.String("error", err.Error()),
		)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) onPanic(c *gin.Context, recovered any) {
	s.fail(c, http.StatusInternalServerError, fmt.Errorf("panic: %v", recovered))
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.logger.InfoContext(c.Request.Context(), "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetString("request_id")),
		)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, workload.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, errLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}

	return *p
}
