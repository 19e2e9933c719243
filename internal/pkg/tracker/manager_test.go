package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

type fakeBackend struct {
	name   string
	mu     sync.Mutex
	stored []byte
	getErr error
	setErr error
	writes int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Get(context.Context) (tally.Stored, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return tally.Stored{}, f.getErr
	}
	if f.stored == nil {
		return tally.Stored{}, ErrNotFound
	}
	return tally.Decode(f.stored)
}

func (f *fakeBackend) Set(_ context.Context, rec tally.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	data, err := tally.Encode(rec)
	if err != nil {
		return err
	}
	f.stored = data
	f.writes++
	return nil
}

func (f *fakeBackend) record(t *testing.T) tally.Record {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotNil(t, f.stored, "%s backend holds nothing", f.name)
	stored, err := tally.Decode(f.stored)
	require.NoError(t, err)
	rec, _ := stored.Resolve(stored.Date)
	return rec
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

var day1 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

const day1Key = "Mon Jan 01 2024"

func TestManager_EndToEnd(t *testing.T) {
	local := &fakeBackend{name: "local"}
	clk := &clock{now: day1}
	ctx := context.Background()

	m := NewManager(local, WithClock(clk.Now))
	rec := m.Initialize(ctx)
	assert.Equal(t, tally.Zero(day1Key), rec)

	m.Increment(ctx, tally.BucketA)
	m.Increment(ctx, tally.BucketA)
	rec = m.Increment(ctx, tally.BucketB)
	assert.Equal(t, 2, rec.CountA)
	assert.Equal(t, 1, rec.CountB)

	assert.JSONEq(t, `{"date":"Mon Jan 01 2024","totalCount":3,"countA":2,"countB":1}`, string(local.stored))

	reloaded := NewManager(local, WithClock(clk.Now))
	rec = reloaded.Initialize(ctx)
	assert.Equal(t, tally.Record{Date: day1Key, CountA: 2, CountB: 1}, rec)
}

func TestManager_TotalAlwaysMatchesBuckets(t *testing.T) {
	m := NewManager(&fakeBackend{name: "local"}, WithClock((&clock{now: day1}).Now))
	ctx := context.Background()
	m.Initialize(ctx)

	for i, b := range []tally.Bucket{tally.BucketB, tally.BucketA, tally.BucketB, tally.BucketB, tally.BucketA} {
		rec := m.Increment(ctx, b)
		assert.Equal(t, rec.CountA+rec.CountB, rec.Total())
		assert.Equal(t, i+1, m.Total())
	}
}

func TestManager_InitializeDiscardsStaleRecord(t *testing.T) {
	local := &fakeBackend{name: "local", stored: []byte(`{"date":"Sun Dec 31 2023","totalCount":9,"countA":4,"countB":5}`)}
	m := NewManager(local, WithClock((&clock{now: day1}).Now))

	rec := m.Initialize(context.Background())
	assert.Equal(t, tally.Zero(day1Key), rec)
}

func TestManager_InitializeSplitsLegacyTotal(t *testing.T) {
	local := &fakeBackend{name: "local", stored: []byte(`{"date":"Mon Jan 01 2024","count":7}`)}
	m := NewManager(local, WithClock((&clock{now: day1}).Now))

	rec := m.Initialize(context.Background())
	assert.Equal(t, 3, rec.CountA)
	assert.Equal(t, 4, rec.CountB)
	assert.Equal(t, 7, rec.Total())
}

func TestManager_InitializeIsIdempotent(t *testing.T) {
	local := &fakeBackend{name: "local", stored: []byte(`{"date":"Mon Jan 01 2024","countA":5,"countB":2}`)}
	m := NewManager(local, WithClock((&clock{now: day1}).Now))
	ctx := context.Background()

	first := m.Initialize(ctx)
	second := m.Initialize(ctx)
	assert.Equal(t, first, second)
	assert.Zero(t, local.writes)
}

func TestManager_InitializeFallsBackToLocal(t *testing.T) {
	remote := &fakeBackend{name: "remote", getErr: ErrTransientBackend}
	local := &fakeBackend{name: "local", stored: []byte(`{"date":"Mon Jan 01 2024","countA":1,"countB":6}`)}
	m := NewManager(remote, WithFallback(local), WithClock((&clock{now: day1}).Now))

	rec := m.Initialize(context.Background())
	assert.Equal(t, tally.Record{Date: day1Key, CountA: 1, CountB: 6}, rec)
}

func TestManager_InitializeFallsBackOnStaleRemote(t *testing.T) {
	remote := &fakeBackend{name: "remote", stored: []byte(`{"date":"Sun Dec 31 2023","countA":8,"countB":8}`)}
	local := &fakeBackend{name: "local", stored: []byte(`{"date":"Mon Jan 01 2024","countA":2,"countB":0}`)}
	m := NewManager(remote, WithFallback(local), WithClock((&clock{now: day1}).Now))

	rec := m.Initialize(context.Background())
	assert.Equal(t, tally.Record{Date: day1Key, CountA: 2}, rec)
}

func TestManager_InitializeZeroesWhenEverythingFails(t *testing.T) {
	remote := &fakeBackend{name: "remote", getErr: ErrTransientBackend}
	local := &fakeBackend{name: "local", stored: []byte(`not json`)}
	m := NewManager(remote, WithFallback(local), WithClock((&clock{now: day1}).Now))

	rec := m.Initialize(context.Background())
	assert.Equal(t, tally.Zero(day1Key), rec)
}

func TestManager_IncrementWritesLocalWhenRemoteIsDown(t *testing.T) {
	remote := &fakeBackend{name: "remote", getErr: ErrTransientBackend, setErr: errors.New("connection refused")}
	local := &fakeBackend{name: "local"}
	m := NewManager(remote, WithFallback(local), WithClock((&clock{now: day1}).Now))
	ctx := context.Background()

	m.Initialize(ctx)
	m.Increment(ctx, tally.BucketA)
	m.Increment(ctx, tally.BucketB)
	m.Increment(ctx, tally.BucketB)

	assert.Equal(t, tally.Record{Date: day1Key, CountA: 1, CountB: 2}, local.record(t))
	assert.Zero(t, remote.writes)
}

func TestManager_IncrementPrefersPrimary(t *testing.T) {
	remote := &fakeBackend{name: "remote"}
	local := &fakeBackend{name: "local"}
	m := NewManager(remote, WithFallback(local), WithClock((&clock{now: day1}).Now))
	ctx := context.Background()

	m.Initialize(ctx)
	m.Increment(ctx, tally.BucketA)

	assert.Equal(t, 1, remote.writes)
	assert.Zero(t, local.writes)
}

func TestManager_IncrementSwallowsTotalFailure(t *testing.T) {
	broken := &fakeBackend{name: "local", setErr: errors.New("disk full")}
	m := NewManager(broken, WithClock((&clock{now: day1}).Now))

	rec := m.Increment(context.Background(), tally.BucketA)
	assert.Equal(t, 1, rec.CountA)
	assert.Equal(t, rec, m.Snapshot())
}

func TestManager_CheckDateRollover(t *testing.T) {
	local := &fakeBackend{name: "local"}
	clk := &clock{now: day1}
	m := NewManager(local, WithClock(clk.Now))
	ctx := context.Background()

	m.Initialize(ctx)
	m.Increment(ctx, tally.BucketA)
	m.Increment(ctx, tally.BucketB)

	assert.False(t, m.CheckDateRollover(ctx))
	assert.Equal(t, 2, m.Total())

	var seen []tally.Record
	m.OnChange(func(r tally.Record) { seen = append(seen, r) })

	clk.Set(day1.Add(24 * time.Hour))
	assert.True(t, m.CheckDateRollover(ctx))

	want := tally.Zero("Tue Jan 02 2024")
	assert.Equal(t, want, m.Snapshot())
	assert.Equal(t, want, local.record(t))
	require.Len(t, seen, 1)
	assert.Equal(t, want, seen[0])
}

func TestManager_RunChecksImmediatelyAndStops(t *testing.T) {
	local := &fakeBackend{name: "local"}
	clk := &clock{now: day1}
	m := NewManager(local, WithClock(clk.Now), WithRolloverInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	m.Initialize(ctx)
	m.Increment(ctx, tally.BucketA)
	clk.Set(day1.Add(24 * time.Hour))

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return m.Snapshot().Date == "Tue Jan 02 2024"
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, m.Total())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
