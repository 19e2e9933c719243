// Package tracker owns today's counts: it loads them from the configured
// backends, writes every change through and resets them at the date boundary.
package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

const (
	DefaultRolloverInterval = time.Minute
	defaultPersistTimeout   = 5 * time.Second
)

// Manager is the single owner of the live record.
type Manager struct {
	primary  Backend
	fallback Backend

	now            func() time.Time
	interval       time.Duration
	persistTimeout time.Duration

	mu        sync.Mutex
	record    tally.Record
	listeners []func(tally.Record)
}

// Option configures a Manager.
type Option func(*Manager)

// WithFallback sets the backend written to when the primary fails and read
// when the primary has nothing usable for today.
func WithFallback(b Backend) Option {
	return func(m *Manager) { m.fallback = b }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRolloverInterval sets how often Run checks for a new day.
func WithRolloverInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithPersistTimeout bounds each write-through.
func WithPersistTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.persistTimeout = d
		}
	}
}

// NewManager creates a manager with primary as the authoritative backend.
func NewManager(primary Backend, opts ...Option) *Manager {
	m := &Manager{
		primary:        primary,
		now:            time.Now,
		interval:       DefaultRolloverInterval,
		persistTimeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.record = tally.Zero(tally.DateKey(m.now()))
	return m
}

func (m *Manager) candidates() []Backend {
	out := []Backend{m.primary}
	if m.fallback != nil {
		out = append(out, m.fallback)
	}
	return out
}

// Initialize loads today's record from the first candidate that has one.
// It never fails; with nothing usable the record starts at zero.
func (m *Manager) Initialize(ctx context.Context) tally.Record {
	today := tally.DateKey(m.now())
	rec := tally.Zero(today)

	for _, b := range m.candidates() {
		stored, err := b.Get(ctx)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.Warnf("[Tracker] Load from %s backend failed: %v", b.Name(), err)
			}
			continue
		}
		adopted, ok := stored.Resolve(today)
		if !ok {
			log.Infof("[Tracker] Discarding %s record for %q, today is %q", b.Name(), stored.Date, today)
			continue
		}
		rec = adopted
		log.Infof("[Tracker] Loaded %s record: A=%d B=%d", b.Name(), rec.CountA, rec.CountB)
		break
	}

	m.mu.Lock()
	m.record = rec
	m.mu.Unlock()

	m.notify(rec)
	return rec
}

// Increment adds one to bucket and writes the result through. Write errors
// are logged, never returned.
func (m *Manager) Increment(ctx context.Context, bucket tally.Bucket) tally.Record {
	m.mu.Lock()
	m.record = m.record.Add(bucket)
	rec := m.record
	m.mu.Unlock()

	m.persist(ctx, rec)
	m.notify(rec)
	return rec
}

// CheckDateRollover zeroes the counts when the calendar date has changed and
// reports whether it did.
func (m *Manager) CheckDateRollover(ctx context.Context) bool {
	today := tally.DateKey(m.now())

	m.mu.Lock()
	if m.record.Date == today {
		m.mu.Unlock()
		return false
	}
	previous := m.record.Date
	m.record = tally.Zero(today)
	rec := m.record
	m.mu.Unlock()

	log.Infof("[Tracker] Date changed from %q to %q, counts reset", previous, today)
	m.persist(ctx, rec)
	m.notify(rec)
	return true
}

// Run checks for a new day once immediately and then on every interval
// until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	m.CheckDateRollover(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckDateRollover(ctx)
		}
	}
}

// Snapshot returns a copy of the live record.
func (m *Manager) Snapshot() tally.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record
}

// Total is the derived sum of both buckets.
func (m *Manager) Total() int {
	return m.Snapshot().Total()
}

// OnChange registers fn to be called after every load, increment and reset.
func (m *Manager) OnChange(fn func(tally.Record)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) notify(rec tally.Record) {
	m.mu.Lock()
	listeners := append([]func(tally.Record){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(rec)
	}
}

func (m *Manager) persist(ctx context.Context, rec tally.Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.persistTimeout)
	defer cancel()

	err := m.primary.Set(ctx, rec)
	if err == nil {
		return
	}
	if m.fallback == nil {
		log.Errorf("[Tracker] Saving to %s backend failed: %v", m.primary.Name(), err)
		return
	}

	log.Warnf("[Tracker] Saving to %s backend failed, writing %s backend instead: %v", m.primary.Name(), m.fallback.Name(), err)
	if err := m.fallback.Set(ctx, rec); err != nil {
		log.Errorf("[Tracker] Saving to %s backend failed: %v", m.fallback.Name(), err)
	}
}
