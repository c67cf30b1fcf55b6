package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danmuck/sandbox/internal/testutil/testlog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMetricsServerRoutes(t *testing.T) {
	testlog.Start(t)

	NewLaunchRecorder().Spawned("server-routes")
	s := NewMetricsServer("sandbox-test", "127.0.0.1:0", zerolog.Nop())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"node":"sandbox-test"`)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `sandbox_launch_spawns_total{launcher="server-routes"}`)
}

func TestMetricsServerStartAndShutdown(t *testing.T) {
	testlog.Start(t)

	s := NewMetricsServer("sandbox-test", "127.0.0.1:0", zerolog.Nop())
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	require.NoError(t, <-s.Err())
}

func TestMetricsServerStartFailsOnBadAddr(t *testing.T) {
	testlog.Start(t)

	s := NewMetricsServer("sandbox-test", "bad-addr", zerolog.Nop())
	require.Error(t, s.Start())
}
