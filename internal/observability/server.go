package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// MetricsServer exposes /metrics and /healthz while launchers run.
type MetricsServer struct {
	node    string
	addr    string
	started time.Time
	router  *gin.Engine
	srv     *http.Server
	ln      net.Listener
	errc    chan error
	logger  zerolog.Logger
}

func NewMetricsServer(node, addr string, logger zerolog.Logger) *MetricsServer {
	RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger, "/metrics", "/healthz"))
	r.Use(RequestMetricsMiddleware(node))

	s := &MetricsServer{
		node:   node,
		addr:   addr,
		router: r,
		logger: logger,
		errc:   make(chan error, 1),
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"node":   s.node,
			"uptime": time.Since(s.started).String(),
		})
	})
	return s
}

func (s *MetricsServer) Handler() http.Handler {
	return s.router
}

// Start binds the listen address and serves in the background.
func (s *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", s.addr, err)
	}
	s.ln = ln
	s.started = time.Now()
	s.srv = &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.errc <- err
	}()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("metrics server listening")
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *MetricsServer) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Err reports a serve failure after Start.
func (s *MetricsServer) Err() <-chan error {
	return s.errc
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
