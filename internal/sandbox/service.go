package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/sandbox/internal/launch"
	"github.com/danmuck/sandbox/internal/observability"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoLaunchers = errors.New("sandbox: no launchers configured")
	ErrBlankName   = errors.New("sandbox: blank launcher name")
)

const shutdownTimeout = 5 * time.Second

// ServiceConfig configures one demonstration run.
type ServiceConfig struct {
	Names             []string
	Lifetime          time.Duration
	Interval          time.Duration
	MetricsListenAddr string
	MetricsLinger     time.Duration
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Names:    []string{"---A---", "---B---", "---C---", "---D---", "---E---"},
		Lifetime: launch.DefaultLifetime,
		Interval: launch.DefaultInterval,
	}
}

// Validate reports launch.ErrInvalidLifetime and launch.ErrInvalidInterval
// for bad durations so callers match the same sentinels as launch.New.
func (c ServiceConfig) Validate() error {
	if len(c.Names) == 0 {
		return ErrNoLaunchers
	}
	for i, name := range c.Names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: index %d", ErrBlankName, i)
		}
	}
	if c.Lifetime <= 0 {
		return fmt.Errorf("%w: %s", launch.ErrInvalidLifetime, c.Lifetime)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: %s", launch.ErrInvalidInterval, c.Interval)
	}
	return nil
}

// Joined is one launcher's entry in a run report.
type Joined struct {
	Name     string
	WorkerID string
}

// Report lists launchers in the order they were joined.
type Report struct {
	Joined []Joined
}

// Service runs the launcher demonstration.
type Service struct {
	cfg  ServiceConfig
	opts []launch.Option
}

// NewServiceWithConfig builds a service; opts are applied to every launcher
// after the lifetime, interval and metrics options derived from cfg.
func NewServiceWithConfig(cfg ServiceConfig, opts ...launch.Option) *Service {
	cfg.MetricsListenAddr = strings.TrimSpace(cfg.MetricsListenAddr)
	return &Service{cfg: cfg, opts: opts}
}

// RunContext blocks until every worker has joined and the metrics linger, if
// any, has elapsed or ctx is done. ctx never cuts a worker short.
func (s *Service) RunContext(ctx context.Context) (Report, error) {
	if err := s.cfg.Validate(); err != nil {
		return Report{}, err
	}

	var metrics *observability.MetricsServer
	if s.metricsEnabled() {
		metrics = observability.NewMetricsServer("sandbox", s.cfg.MetricsListenAddr, log.Logger)
		if err := metrics.Start(); err != nil {
			return Report{}, err
		}
	}

	report, err := s.launchAll()
	if metrics == nil {
		return report, err
	}

	s.linger(ctx, metrics)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := metrics.Shutdown(shutdownCtx); serr != nil {
		err = errors.Join(err, fmt.Errorf("sandbox: metrics shutdown: %w", serr))
	}
	return report, err
}

func (s *Service) metricsEnabled() bool {
	return s.cfg.MetricsListenAddr != ""
}

// launchAll constructs and spawns every launcher in order, then closes them in
// reverse order. Joins are never cut short.
func (s *Service) launchAll() (Report, error) {
	opts := []launch.Option{
		launch.WithLifetime(s.cfg.Lifetime),
		launch.WithInterval(s.cfg.Interval),
	}
	if s.metricsEnabled() {
		opts = append(opts, launch.WithRecorder(observability.NewLaunchRecorder()))
	}
	opts = append(opts, s.opts...)

	launchers := make([]*launch.Launcher, 0, len(s.cfg.Names))
	var err error
	for _, name := range s.cfg.Names {
		l, nerr := launch.New(name, opts...)
		if nerr != nil {
			err = fmt.Errorf("sandbox: launcher %q: %w", name, nerr)
			break
		}
		launchers = append(launchers, l)
		l.Spawn()
	}
	log.Debug().Int("launchers", len(launchers)).Msg("sandbox.Service spawned")

	report := Report{Joined: make([]Joined, 0, len(launchers))}
	for i := len(launchers) - 1; i >= 0; i-- {
		l := launchers[i]
		id := l.WorkerID()
		if cerr := l.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		report.Joined = append(report.Joined, Joined{Name: l.Name(), WorkerID: id})
	}
	log.Info().Int("joined", len(report.Joined)).Msg("sandbox.Service all workers joined")
	return report, err
}

func (s *Service) linger(ctx context.Context, metrics *observability.MetricsServer) {
	if s.cfg.MetricsLinger <= 0 {
		return
	}
	timer := time.NewTimer(s.cfg.MetricsLinger)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	case err := <-metrics.Err():
		if err != nil {
			log.Warn().Err(err).Msg("sandbox.Service metrics server stopped")
		}
	}
}
