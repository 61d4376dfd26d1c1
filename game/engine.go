package game

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

// Choice is the answer to a difficulty-transition prompt
type Choice int

const (
	// ChoiceContinue keeps progress and moves up one level
	ChoiceContinue Choice = iota
	// ChoiceFresh restarts at the new tier's fixed starting values
	ChoiceFresh
)

func (c Choice) String() string {
	if c == ChoiceFresh {
		return "fresh"
	}
	return "continue"
}

// Engine owns one play session: the snake, the food, and every counter the
// rules touch. All mutation happens under mu, so callers on any goroutine
// see the session as if it ran on a single thread.
type Engine struct {
	mu sync.Mutex

	snake    *Snake
	food     *Food
	rng      *rand.Rand
	policy   Policy
	skin     Skin
	recorder Recorder
	renderer Renderer
	sched    Scheduler
	armed    uint64 // token of the loop run allowed to tick, 0 when none
	listener func(Event)
	playerID string
	mode     Mode

	state       State
	score       int
	health      int
	level       int
	speed       float64
	fruitsEaten int
	pendingTier Tier

	// survive Reset within a play session
	deaths          int
	immortalSeconds float64
	wrapMaxLevel    int
	unlocked        map[string]bool

	// per-tick bookkeeping
	rangeTicks int
	turnTicks  int
	rangeCatch *Position
	events     []Event
}

// Option configures an Engine
type Option func(*Engine)

// WithRecorder sets the score/achievement sink
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithRenderer sets the draw target
func WithRenderer(r Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithPolicy sets the capability provider
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
		if sp, ok := p.(*SkinPolicy); ok {
			e.skin = sp.Skin()
		}
	}
}

// WithSkin selects a skin and the SkinPolicy backing it
func WithSkin(s Skin) Option {
	return func(e *Engine) {
		e.skin = s
		e.policy = NewSkinPolicy(s, nil, nil)
	}
}

// WithScheduler replaces the default ticker loop
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithRand sets the random source for food, respawns and random steering
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithSeed gives each engine built with it its own source seeded with seed
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithMode sets the session mode
func WithMode(m Mode) Option {
	return func(e *Engine) { e.mode = m }
}

// WithPlayer sets the player id passed to the recorder
func WithPlayer(id string) Option {
	return func(e *Engine) { e.playerID = id }
}

// WithEvents registers a listener. It is called on the goroutine that
// caused the event, after the engine lock is released, and must not block.
func WithEvents(fn func(Event)) Option {
	return func(e *Engine) { e.listener = fn }
}

// WithUnlocked seeds achievements the player already holds so they are
// not reported again.
func WithUnlocked(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.unlocked[n] = true
		}
	}
}

// New creates an engine in the Ready state with food placed.
func New(opts ...Option) *Engine {
	e := &Engine{
		recorder: nopRecorder{},
		renderer: nopRenderer{},
		unlocked: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if e.policy == nil {
		e.policy = NewSkinPolicy(e.skin, nil, nil)
	}
	if e.sched == nil {
		e.sched = NewLoop(e.runTick)
	}
	e.snake = NewSnake()
	e.food = NewFood(e.rng)
	e.resetLocked()
	return e
}

// Start moves a Ready session to Running and arms the run loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.state != StateReady {
		e.mu.Unlock()
		return
	}
	e.state = StateRunning
	e.armed = e.sched.Start(TickInterval(e.speed))
	e.commit(true)
}

// Stop halts the run loop without touching session state.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disarm()
}

// Reset cancels the run loop and reinitializes the session. The death
// counter, the special-mode counters and the unlocked set survive.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.disarm()
	e.resetLocked()
	e.commit(true)
}

func (e *Engine) resetLocked() {
	e.state = StateReady
	e.score = 0
	e.health = MaxHealth
	e.level = 1
	e.speed = InitialSpeed
	e.fruitsEaten = 0
	e.rangeTicks = 0
	e.turnTicks = 0
	e.rangeCatch = nil
	e.snake.Reset()
	e.snake.SetColor(FruitForLevel(1).SnakeColor)
	e.food.ResetCounts()
	e.food.Spawn(e.snake, e.level)
}

// SetDirection records a steering intent for the next tick. Reversals are
// ignored, as is all steering in immortal mode.
func (e *Engine) SetDirection(d Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeImmortal {
		return
	}
	if e.state != StateReady && e.state != StateRunning {
		return
	}
	e.snake.SetIntendedDirection(d)
}

// Teleport moves the snake so its head lands on target. It is a no-op
// returning false unless the session is running, the policy allows
// teleporting, target is on the grid and clear of the body.
func (e *Engine) Teleport(target Position) bool {
	e.mu.Lock()
	if e.state != StateRunning || !e.policy.TeleportEnabled() || !target.InBounds() {
		e.mu.Unlock()
		return false
	}
	from := e.snake.Head()
	if !e.snake.Teleport(target) {
		e.mu.Unlock()
		return false
	}
	e.emit(Event{Type: EventTeleport, At: from})
	e.commit(true)
	return true
}

// ResolveTransition answers a pending difficulty-transition prompt and
// resumes the session.
func (e *Engine) ResolveTransition(c Choice) error {
	e.mu.Lock()
	if e.state != StatePaused {
		e.mu.Unlock()
		return ErrNoTransitionPending
	}
	tier := e.pendingTier
	switch c {
	case ChoiceFresh:
		fs := freshStarts[tier]
		e.level = fs.level
		e.speed = CapSpeed(fs.speed)
		e.health = fs.health
		e.snake.Reposition(Position{X: StartX, Y: StartY})
	default:
		e.level++
		e.speed = CapSpeed(e.speed + LevelUpSpeed)
	}

	e.snake.SetColor(FruitForLevel(e.level).SnakeColor)

	switch tier {
	case TierMedium:
		e.unlock(AchievementMediumMode)
	case TierHard:
		e.unlock(AchievementHardcore)
	}

	e.food.Spawn(e.snake, e.level)
	e.state = StateRunning
	e.armed = e.sched.Start(TickInterval(e.speed))
	e.emit(Event{Type: EventTransitionResolved, Tier: tier, Level: e.level, Score: e.score, Health: e.health})
	e.commit(true)
	return nil
}

// Tick advances the session by one step. Outside Running it does nothing.
func (e *Engine) Tick() {
	e.mu.Lock()
	draw := e.tick()
	e.commit(draw)
}

// runTick is the loop callback. A tick fired by a run that has since been
// stopped or replaced may still be waiting on mu; it must not touch the
// session the newer run belongs to.
func (e *Engine) runTick(token uint64) {
	e.mu.Lock()
	if token != e.armed {
		e.mu.Unlock()
		return
	}
	draw := e.tick()
	e.commit(draw)
}

// disarm stops the loop and invalidates its pending ticks. Must be called
// with mu held.
func (e *Engine) disarm() {
	e.sched.Stop()
	e.armed = 0
}

// commit releases the lock, then hands queued events and a snapshot to the
// listener and renderer. Must be called with mu held.
func (e *Engine) commit(draw bool) {
	events := e.events
	e.events = nil
	var snap Snapshot
	if draw {
		snap = e.snapshotLocked()
	}
	listener := e.listener
	renderer := e.renderer
	e.mu.Unlock()

	if draw {
		renderer.Draw(snap)
	}
	if listener != nil {
		for _, ev := range events {
			listener(ev)
		}
	}
}

func (e *Engine) emit(ev Event) {
	if ev.Level == 0 {
		ev.Level = e.level
	}
	e.events = append(e.events, ev)
}

// unlock reports an achievement once per session
func (e *Engine) unlock(name string) {
	if e.unlocked[name] {
		return
	}
	e.unlocked[name] = true
	e.recorder.UnlockAchievement(e.playerID, name)
	e.emit(Event{Type: EventAchievement, Achievement: name, Score: e.score})
}

// Snapshot returns an immutable copy of the session
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		State:       e.state,
		Mode:        e.mode,
		Skin:        e.skin,
		Segments:    e.snake.Segments(),
		Direction:   e.snake.Direction(),
		SnakeColor:  e.snake.Color(),
		Food:        e.food.Position(),
		Fruit:       e.food.Fruit(),
		ShowFood:    e.mode != ModeImmortal,
		Score:       e.score,
		Health:      e.health,
		Level:       e.level,
		Tier:        TierOf(e.level),
		Speed:       e.speed,
		FruitsEaten: e.fruitsEaten,
		Deaths:      e.deaths,
		Background:  BackgroundFor(e.level),
		PendingTier: e.pendingTier,
	}
	if e.rangeCatch != nil {
		p := *e.rangeCatch
		s.RangeCatch = &p
	}
	return s
}

// State returns the lifecycle state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Score returns the points of the current game
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// Health returns the remaining lives
func (e *Engine) Health() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.health
}

// Level returns the current level
func (e *Engine) Level() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// Speed returns the speed value the tick interval is derived from
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Deaths returns the health-depleting collisions of this play session
func (e *Engine) Deaths() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deaths
}

// Mode returns the session mode. It is fixed at construction.
func (e *Engine) Mode() Mode {
	return e.mode
}
