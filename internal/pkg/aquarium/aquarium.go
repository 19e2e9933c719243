package aquarium

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const (
	DefaultCap           = 30
	DefaultBaseline      = 3
	DefaultSpawnChance   = 0.3
	DefaultCurvePoints   = 4000
	DefaultFrameInterval = 33 * time.Millisecond
	DefaultWidth         = 400
	DefaultHeight        = 400
	DefaultMaxSpeed      = 1.5
	// PhaseStep is how far a fish's phase advances per frame.
	PhaseStep = math.Pi / 60
)

// Config describes the tank and its population rules.
type Config struct {
	Width         float64
	Height        float64
	Cap           int
	Baseline      int
	SpawnChance   float64
	CurvePoints   int
	FrameInterval time.Duration
	MaxSpeed      float64
}

// DefaultConfig returns the stock tank.
func DefaultConfig() Config {
	return Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Cap:           DefaultCap,
		Baseline:      DefaultBaseline,
		SpawnChance:   DefaultSpawnChance,
		CurvePoints:   DefaultCurvePoints,
		FrameInterval: DefaultFrameInterval,
		MaxSpeed:      DefaultMaxSpeed,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Cap <= 0 {
		c.Cap = d.Cap
	}
	if c.Baseline < 0 {
		c.Baseline = 0
	}
	if c.SpawnChance < 0 || c.SpawnChance > 1 {
		c.SpawnChance = d.SpawnChance
	}
	if c.CurvePoints <= 0 {
		c.CurvePoints = d.CurvePoints
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = d.MaxSpeed
	}
	return c
}

// Fish is one animated particle. It is never persisted.
type Fish struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Phase float64 `json:"phase"`
}

// Point is a curve sample in tank coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FishFrame is a fish plus its evaluated outline.
type FishFrame struct {
	Fish
	Shape []Point `json:"shape,omitempty"`
}

// Frame is a snapshot of the tank for the page.
type Frame struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Target int         `json:"target"`
	Fish   []FishFrame `json:"fish"`
}

// Aquarium owns the fish population. total is read on every step and is
// the only coupling to the counters.
type Aquarium struct {
	cfg   Config
	total func() int

	mu        sync.Mutex
	rnd       *rand.Rand
	fish      []Fish
	bonus     int
	lastTotal int
}

// NewAquarium creates a tank. A nil src seeds from the clock.
func NewAquarium(cfg Config, src rand.Source, total func() int) *Aquarium {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if total == nil {
		total = func() int { return 0 }
	}
	return &Aquarium{
		cfg:   cfg.withDefaults(),
		total: total,
		rnd:   rand.New(src),
	}
}

// Config returns the effective configuration.
func (a *Aquarium) Config() Config {
	return a.cfg
}

// Target is the population the tank converges to for total.
func (a *Aquarium) Target(total int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.target(total)
}

func (a *Aquarium) target(total int) int {
	if total < 0 {
		total = 0
	}
	return min(a.cfg.Cap, total+a.cfg.Baseline+a.bonus)
}

// OnIncrement may grant one extra fish. It reports whether it did.
func (a *Aquarium) OnIncrement() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rnd.Float64() >= a.cfg.SpawnChance {
		return false
	}
	a.bonus++
	return true
}

// Len returns the current population.
func (a *Aquarium) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.fish)
}

// Step advances the tank by one frame.
func (a *Aquarium) Step() {
	total := a.total()

	a.mu.Lock()
	defer a.mu.Unlock()

	if total < a.lastTotal {
		a.bonus = 0
	}
	a.lastTotal = total

	target := a.target(total)
	for len(a.fish) > target {
		i := a.rnd.Intn(len(a.fish))
		a.fish[i] = a.fish[len(a.fish)-1]
		a.fish = a.fish[:len(a.fish)-1]
	}
	for len(a.fish) < target {
		a.fish = append(a.fish, a.spawn())
	}

	for i := range a.fish {
		f := &a.fish[i]
		f.X, f.VX = bounce(f.X+f.VX, f.VX, a.cfg.Width)
		f.Y, f.VY = bounce(f.Y+f.VY, f.VY, a.cfg.Height)
		f.Phase = math.Mod(f.Phase+PhaseStep, 2*math.Pi)
	}
}

func (a *Aquarium) spawn() Fish {
	speed := func() float64 {
		return (a.rnd.Float64()*2 - 1) * a.cfg.MaxSpeed
	}
	return Fish{
		ID:    uuid.NewString(),
		X:     a.rnd.Float64() * a.cfg.Width,
		Y:     a.rnd.Float64() * a.cfg.Height,
		VX:    speed(),
		VY:    speed(),
		Phase: a.rnd.Float64() * 2 * math.Pi,
	}
}

// bounce reflects v when pos leaves [0, limit] and clamps pos back in.
func bounce(pos, v, limit float64) (float64, float64) {
	switch {
	case pos < 0:
		return 0, math.Abs(v)
	case pos > limit:
		return limit, -math.Abs(v)
	}
	return pos, v
}

// Fish returns a copy of the population.
func (a *Aquarium) Fish() []Fish {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Fish, len(a.fish))
	copy(out, a.fish)
	return out
}

// Frame snapshots the tank with outlines of points samples each.
// points <= 0 omits the outlines.
func (a *Aquarium) Frame(points int) Frame {
	fish := a.Fish()

	a.mu.Lock()
	target := a.target(a.lastTotal)
	a.mu.Unlock()

	frame := Frame{
		Width:  a.cfg.Width,
		Height: a.cfg.Height,
		Target: target,
		Fish:   make([]FishFrame, 0, len(fish)),
	}
	for _, f := range fish {
		ff := FishFrame{Fish: f}
		if points > 0 {
			ff.Shape = Shape(f, points)
		}
		frame.Fish = append(frame.Fish, ff)
	}
	return frame
}

// Run steps the tank every FrameInterval until ctx is done.
func (a *Aquarium) Run(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.FrameInterval)
	defer ticker.Stop()

	log.Infof("[Aquarium] Animation loop started (interval %s)", a.cfg.FrameInterval)
	for {
		select {
		case <-ctx.Done():
			log.Info("[Aquarium] Animation loop stopped")
			return
		case <-ticker.C:
			a.Step()
		}
	}
}
