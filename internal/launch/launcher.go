package launch

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrMissingName     = errors.New("launch: missing launcher name")
	ErrInvalidLifetime = errors.New("launch: invalid worker lifetime")
	ErrInvalidInterval = errors.New("launch: invalid polling interval")
)

const (
	DefaultLifetime = time.Second
	DefaultInterval = 100 * time.Millisecond
)

type options struct {
	sink     Sink
	clock    Clock
	recorder Recorder
	lifetime time.Duration
	interval time.Duration
}

// Option configures a Launcher.
type Option func(*options)

func WithSink(sink Sink) Option {
	return func(o *options) {
		if sink != nil {
			o.sink = sink
		}
	}
}

func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(o *options) {
		if rec != nil {
			o.recorder = rec
		}
	}
}

// WithLifetime sets how far past spawn time the worker deadline lies.
func WithLifetime(d time.Duration) Option {
	return func(o *options) { o.lifetime = d }
}

// WithInterval sets the sleep between worker ticks.
func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// worker is one spawned goroutine. ticks is written by the worker before done
// is closed and read only after done.
type worker struct {
	id       string
	started  time.Time
	deadline time.Time
	done     chan struct{}
	ticks    int
}

// Launcher owns zero or one worker goroutine. Spawn attaches a worker, Close
// joins it. A Launcher must not be copied after first use; use Clone.
type Launcher struct {
	name string
	opts options

	mu     sync.Mutex
	worker *worker
	closed bool
}

// Launcher constructor. The name is required and immutable.
func New(name string, opts ...Option) (*Launcher, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingName
	}
	o := options{
		sink:     globalSink{},
		clock:    WallClock{},
		recorder: nopRecorder{},
		lifetime: DefaultLifetime,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lifetime <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLifetime, o.lifetime)
	}
	if o.interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, o.interval)
	}
	return &Launcher{name: name, opts: o}, nil
}

// Clone returns a new Launcher with the same name and options and an empty
// worker slot. The source's worker, if any, stays owned by the source.
func (l *Launcher) Clone() *Launcher {
	return &Launcher{name: l.name, opts: l.opts}
}

func (l *Launcher) Name() string {
	return l.name
}

// Attached reports whether a worker occupies the slot, finished or not.
func (l *Launcher) Attached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.worker != nil
}

// WorkerID returns the attached worker's id, or "" when the slot is empty.
func (l *Launcher) WorkerID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.worker == nil {
		return ""
	}
	return l.worker.id
}

// Deadline returns the attached worker's deadline.
func (l *Launcher) Deadline() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.worker == nil {
		return time.Time{}, false
	}
	return l.worker.deadline, true
}

// Spawn starts the worker unless one is already attached or the launcher is
// closed. It reports whether a new worker was started.
func (l *Launcher) Spawn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.worker != nil {
		l.opts.recorder.SpawnIgnored(l.name)
		return false
	}

	now := l.opts.clock.Now()
	deadline := now.Add(l.opts.lifetime)
	w := &worker{
		id:       newWorkerID(),
		started:  now,
		deadline: deadline,
		done:     make(chan struct{}),
	}
	l.worker = w
	go l.run(w, deadline)
	l.opts.recorder.Spawned(l.name)
	return true
}

// run is the worker body. It emits one counter line per interval until the
// sampled time is past deadline.
func (l *Launcher) run(w *worker, deadline time.Time) {
	defer close(w.done)
	l.opts.sink.Logf("%s worker %s started deadline=%s", l.name, w.id, deadline.Format(time.RFC3339Nano))

	count := 0
	for now := l.opts.clock.Now(); !now.After(deadline); now = l.opts.clock.Now() {
		l.opts.sink.Logf("%s --> %d", l.name, count)
		count++
		l.opts.recorder.Tick(l.name)
		l.opts.clock.Sleep(l.opts.interval)
	}
	w.ticks = count
}

// Close joins the attached worker, if any, and closes the launcher. It blocks
// until the worker returns; workers are never cancelled. Close is idempotent
// and always returns nil.
func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	w := l.worker
	if w == nil {
		return nil
	}

	<-w.done
	l.opts.sink.Logf("%s worker %s has joined", l.name, w.id)
	l.opts.recorder.Joined(l.name, l.opts.clock.Now().Sub(w.started), w.ticks)
	l.worker = nil
	return nil
}
