package observability

import (
	"testing"
	"time"

	"github.com/danmuck/sandbox/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)

	require.NotPanics(t, func() {
		RegisterMetrics()
		RegisterMetrics()
		RecordHTTPRequest("sandbox-a", "GET", "/healthz", 200, 12*time.Millisecond)
	})
}

func TestLaunchRecorderCounts(t *testing.T) {
	testlog.Start(t)

	const name = "recorder-counts"
	rec := NewLaunchRecorder()
	active := testutil.ToFloat64(launchActive)

	rec.Spawned(name)
	rec.SpawnIgnored(name)
	rec.SpawnIgnored(name)
	for i := 0; i < 11; i++ {
		rec.Tick(name)
	}
	require.Equal(t, active+1, testutil.ToFloat64(launchActive))
	rec.Joined(name, 1100*time.Millisecond, 11)

	require.Equal(t, 1.0, testutil.ToFloat64(launchSpawns.WithLabelValues(name)))
	require.Equal(t, 2.0, testutil.ToFloat64(launchSpawnsIgnored.WithLabelValues(name)))
	require.Equal(t, 11.0, testutil.ToFloat64(launchTicks.WithLabelValues(name)))
	require.Equal(t, 1.0, testutil.ToFloat64(launchJoins.WithLabelValues(name)))
	require.Equal(t, active, testutil.ToFloat64(launchActive))
}
