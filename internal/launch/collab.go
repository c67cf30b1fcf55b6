package launch

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sink receives printf-style log lines from launchers and their workers.
// Implementations must be safe for concurrent use.
type Sink interface {
	Logf(format string, args ...any)
}

type loggerSink struct {
	logger zerolog.Logger
}

// LoggerSink adapts a zerolog logger to Sink. Lines are written at info level.
func LoggerSink(logger zerolog.Logger) Sink {
	return loggerSink{logger: logger}
}

func (s loggerSink) Logf(format string, args ...any) {
	s.logger.Info().Msgf(format, args...)
}

// globalSink resolves log.Logger on every call so launchers built before
// logging is configured still follow the configured output.
type globalSink struct{}

func (globalSink) Logf(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// Clock is the time source used for deadlines and polling.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// WallClock uses the process clock.
type WallClock struct{}

func (WallClock) Now() time.Time        { return time.Now() }
func (WallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Recorder observes launcher lifecycle events.
type Recorder interface {
	Spawned(name string)
	SpawnIgnored(name string)
	Tick(name string)
	Joined(name string, lifetime time.Duration, ticks int)
}

type nopRecorder struct{}

func (nopRecorder) Spawned(string)                    {}
func (nopRecorder) SpawnIgnored(string)               {}
func (nopRecorder) Tick(string)                       {}
func (nopRecorder) Joined(string, time.Duration, int) {}

func newWorkerID() string {
	return ulid.Make().String()
}
