// Package store holds the dashboard's current sensor readings and device
// states. Every change produces a new immutable Snapshot that is pushed to
// subscribers. The store owns exactly one background task at a time: either
// the synthetic-data timer or the live stream connection.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luki/homedash/internal/device"
	"github.com/luki/homedash/internal/live"
	"github.com/luki/homedash/internal/metrics"
	"github.com/luki/homedash/internal/sensor"
	"github.com/luki/homedash/internal/settings"
)

// DefaultInterval is the synthetic update period.
const DefaultInterval = 3 * time.Second

// ErrUnknownDevice is returned by device operations for ids not in the store.
var ErrUnknownDevice = errors.New("unknown device")

// Mode selects where readings come from.
type Mode int

const (
	Synthetic Mode = iota // generated readings on a timer
	Live                  // readings from the sensor stream
)

// String returns "live" or "synthetic".
func (m Mode) String() string {
	if m == Live {
		return "live"
	}
	return "synthetic"
}

// Snapshot is an immutable view of the store. Callers must not modify
// the slices it carries.
type Snapshot struct {
	Seq     uint64
	Mode    Mode
	APIBase string
	Sensors []sensor.Reading
	Devices []device.State
}

// Streamer runs a live connection until ctx is cancelled.
type Streamer interface {
	Run(ctx context.Context, url string, handle func(live.Sample)) error
}

// Store is the single owner of readings and devices.
type Store struct {
	mu      sync.Mutex
	snap    atomic.Pointer[Snapshot]
	subs    []*subscriber
	nextSub int
	mode    Mode
	apiBase string
	task    *task
	closed  bool

	// Deliveries queued in publish order, drained outside mu.
	qmu        sync.Mutex
	queue      []delivery
	delivering bool

	interval time.Duration
	now      func() time.Time
	gen      *sensor.Generator
	streamer Streamer
	log      *slog.Logger
}

type subscriber struct {
	id     int
	fn     func(Snapshot)
	active atomic.Bool
}

type delivery struct {
	snap Snapshot
	to   []*subscriber
}

// task is the handle of the running timer or connection.
type task struct {
	mode   Mode
	cancel context.CancelFunc
	done   chan struct{}
}

func (t *task) wait() {
	if t != nil {
		<-t.done
	}
}

// Option configures a Store.
type Option func(*Store)

// WithInterval sets the synthetic update period.
func WithInterval(d time.Duration) Option {
	return func(s *Store) { s.interval = d }
}

// WithClock sets the time source used to stamp readings.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithGenerator sets the synthetic value generator.
func WithGenerator(g *sensor.Generator) Option {
	return func(s *Store) { s.gen = g }
}

// WithStreamer sets the live connection implementation.
func WithStreamer(st Streamer) Option {
	return func(s *Store) { s.streamer = st }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a store with the initial sensors and devices and starts the
// background task selected by cfg.
func New(cfg settings.Settings, opts ...Option) *Store {
	s := &Store{
		interval: DefaultInterval,
		now:      time.Now,
		mode:     Synthetic,
		apiBase:  strings.TrimSpace(cfg.APIBase),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.gen == nil {
		s.gen = sensor.NewGenerator(nil)
	}
	if s.streamer == nil {
		s.streamer = live.NewClient(s.log)
	}
	if s.apiBase == "" {
		s.apiBase = settings.DefaultAPIBase
	}
	if cfg.UseLive {
		s.mode = Live
	}

	now := s.now()
	s.snap.Store(&Snapshot{
		Seq:     1,
		Mode:    s.mode,
		APIBase: s.apiBase,
		Sensors: sensor.Defaults(now),
		Devices: device.Defaults(now),
	})

	s.mu.Lock()
	s.startLocked()
	s.mu.Unlock()
	return s
}

// ── Reads ────────────────────────────────────────────────────────────

// Snapshot returns the latest published snapshot.
func (s *Store) Snapshot() Snapshot {
	return *s.snap.Load()
}

// Readings returns a copy of the current sensor readings, including their
// history windows.
func (s *Store) Readings() []sensor.Reading {
	out := slices.Clone(s.snap.Load().Sensors)
	for i := range out {
		out[i].History = slices.Clone(out[i].History)
	}
	return out
}

// Devices returns a copy of the current device states.
func (s *Store) Devices() []device.State {
	return slices.Clone(s.snap.Load().Devices)
}

// Mode returns the selected data source.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Active reports the mode of the running background task, if any.
func (s *Store) Active() (Mode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil {
		return 0, false
	}
	return s.task.mode, true
}

// ── Subscriptions ────────────────────────────────────────────────────

// Subscribe registers fn and calls it with the current snapshot, then
// again after every publish, in publish order. Handlers run without the
// store lock held and may call any Store method, including unsubscribe.
// Deliveries are serialized: if another goroutine is already delivering,
// it delivers this subscriber's snapshots too, so fn may run after
// Subscribe (or a mutator) has returned. The returned func removes the
// subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	defer s.deliver()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	sub := &subscriber{id: s.nextSub, fn: fn}
	sub.active.Store(true)
	s.subs = append(s.subs, sub)
	s.enqueueLocked(*s.snap.Load(), []*subscriber{sub})

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(x *subscriber) bool { return x == sub })
		})
	}
}

// publishLocked stores next and queues it for every current subscriber.
// The caller must call deliver after releasing mu.
func (s *Store) publishLocked(next Snapshot, cause string) {
	next.Seq = s.snap.Load().Seq + 1
	next.Mode = s.mode
	next.APIBase = s.apiBase
	s.snap.Store(&next)
	metrics.Publishes.WithLabelValues(cause).Inc()
	s.enqueueLocked(next, slices.Clone(s.subs))
}

func (s *Store) enqueueLocked(snap Snapshot, to []*subscriber) {
	if len(to) == 0 {
		return
	}
	s.qmu.Lock()
	s.queue = append(s.queue, delivery{snap: snap, to: to})
	s.qmu.Unlock()
}

// deliver drains the queue unless another call is already draining it.
func (s *Store) deliver() {
	s.qmu.Lock()
	if s.delivering {
		s.qmu.Unlock()
		return
	}
	s.delivering = true
	for len(s.queue) > 0 {
		d := s.queue[0]
		s.queue = s.queue[1:]
		s.qmu.Unlock()
		for _, sub := range d.to {
			if sub.active.Load() {
				sub.fn(d.snap)
			}
		}
		s.qmu.Lock()
	}
	s.delivering = false
	s.qmu.Unlock()
}

// ── Mode transitions ─────────────────────────────────────────────────

// SetDataSource switches between synthetic and live data. The running
// task is stopped and has exited before its replacement starts. Selecting
// the current mode is a no-op.
func (s *Store) SetDataSource(useLive bool) {
	mode := Synthetic
	if useLive {
		mode = Live
	}
	s.transition("mode", func() (changed, replace bool) {
		if s.mode == mode {
			return false, false
		}
		s.mode = mode
		s.log.Info("data_source_changed", "mode", mode.String())
		return true, true
	})
}

// SetAPIBase changes the base URL of the live stream. In live mode the
// connection is recreated with the new URL.
func (s *Store) SetAPIBase(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return settings.ErrEmptyAPIBase
	}
	s.transition("api_base", func() (changed, replace bool) {
		if s.apiBase == url {
			return false, false
		}
		s.apiBase = url
		s.log.Info("api_base_changed", "url", url, "reconnect", s.mode == Live)
		return true, s.mode == Live
	})
	return nil
}

// Close stops the background task. It is safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	old := s.stopLocked()
	s.mu.Unlock()
	old.wait()
}

// transition applies change under the lock. When change asks for a
// replacement, the running task is torn down and awaited outside the lock
// before a task for the current mode is started.
func (s *Store) transition(cause string, change func() (changed, replace bool)) {
	defer s.deliver()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	changed, replace := change()
	if !changed {
		s.mu.Unlock()
		return
	}
	if replace {
		old := s.stopLocked()
		s.mu.Unlock()
		old.wait()
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		if s.task == nil {
			s.startLocked()
		}
	}
	s.publishLocked(s.Snapshot(), cause)
	s.mu.Unlock()
}

func (s *Store) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{mode: s.mode, cancel: cancel, done: make(chan struct{})}
	s.task = t

	switch s.mode {
	case Live:
		go s.runLive(ctx, t, live.Endpoint(s.apiBase))
	default:
		go s.runSynthetic(ctx, t)
	}
}

func (s *Store) stopLocked() *task {
	t := s.task
	s.task = nil
	if t != nil {
		t.cancel()
	}
	return t
}

// ── Background tasks ─────────────────────────────────────────────────

func (s *Store) runSynthetic(ctx context.Context, t *task) {
	defer close(t.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("synthetic_started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.log.Info("synthetic_stopped")
			return
		case <-ticker.C:
			s.tick(t)
		}
	}
}

func (s *Store) runLive(ctx context.Context, t *task, url string) {
	defer close(t.done)
	s.log.Info("live_started", "url", url)
	err := s.streamer.Run(ctx, url, func(smp live.Sample) {
		s.ingest(t, smp)
	})
	s.log.Info("live_stopped", "url", url, "reason", err)
}

// tick advances every sensor by one synthetic step. Ticks from a task that
// is no longer current are dropped; a nil task always applies.
func (s *Store) tick(t *task) {
	defer s.deliver()
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != nil && s.task != t {
		return
	}

	cur := s.snap.Load()
	now := s.now()
	next := *cur
	next.Sensors = make([]sensor.Reading, len(cur.Sensors))
	for i, r := range cur.Sensors {
		next.Sensors[i] = r.Observe(s.gen.Next(r.Value, r.Min, r.Max), now)
	}
	s.publishLocked(next, "tick")
}

// ingest merges one live sample. Samples from a stale connection are
// dropped; a nil task always applies.
func (s *Store) ingest(t *task, smp live.Sample) {
	defer s.deliver()
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != nil && s.task != t {
		return
	}

	cur := s.snap.Load()
	now := s.now()
	next := *cur
	next.Sensors = make([]sensor.Reading, len(cur.Sensors))
	for i, r := range cur.Sensors {
		switch r.Kind {
		case sensor.Light:
			r = r.Observe(smp.Light, now)
		case sensor.Humidity:
			r = r.Observe(smp.Humidity, now)
		case sensor.Temperature:
			r = r.Observe(smp.Temperature, now)
		}
		next.Sensors[i] = r
	}
	next.Devices = device.FromFlags(smp.Fan, smp.Blinds, smp.Bulbs, now)
	s.publishLocked(next, "live")
}

// ── Device control ───────────────────────────────────────────────────

// ToggleDevice advances a device through on -> off -> auto.
func (s *Store) ToggleDevice(id string) (device.State, error) {
	return s.updateDevice(id, "toggle", func(d device.State, now time.Time) device.State {
		return d.Toggled(now)
	})
}

// SetDeviceLevel overwrites a device's level.
func (s *Store) SetDeviceLevel(id string, level int) (device.State, error) {
	return s.updateDevice(id, "level", func(d device.State, now time.Time) device.State {
		return d.WithLevel(level, now)
	})
}

func (s *Store) updateDevice(id, cause string, fn func(device.State, time.Time) device.State) (device.State, error) {
	defer s.deliver()
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	idx := device.Find(cur.Devices, id)
	if idx < 0 {
		return device.State{}, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}

	next := *cur
	next.Devices = slices.Clone(cur.Devices)
	next.Devices[idx] = fn(next.Devices[idx], s.now())
	s.publishLocked(next, cause)
	return next.Devices[idx], nil
}
