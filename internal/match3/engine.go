package match3

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"connectgame/internal/config"
	"connectgame/internal/grid"
)

// Engine is the facade assembling board, timer, stats and the cascade
// processor into one session. A single mutex guards every mutation;
// external callers (the demo HTTP/WS layer) and the cascade's own driver
// goroutine both go through it, so nothing in the core above this struct
// needs its own locking.
type Engine struct {
	mu sync.Mutex

	cfg      config.Config
	board    *Board
	timer    *Timer
	stats    *Stats
	specials *SpecialRegistry
	actions  *Actions
	process  *Process
	eventLog *EventLog

	handlers EventHandlers

	playing         bool
	timerExpired    bool
	processComplete bool
	finalized       bool

	rng *rand.Rand

	ticker   *time.Ticker
	stopChan chan struct{}
	running  bool
}

// NewEngine constructs an Engine with a fresh, time-seeded RNG. Call
// Setup before StartPlaying.
func NewEngine() *Engine {
	return NewEngineWithRNG(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithRNG builds an Engine around a caller-supplied RNG, so a
// session's grid generation and refill sequence can be made
// deterministic for tests and replay.
func NewEngineWithRNG(rng *rand.Rand) *Engine {
	e := &Engine{
		rng:      rng,
		timer:    NewTimer(),
		stats:    NewStats(),
		specials: NewSpecialRegistry(),
		eventLog: NewEventLog(),
	}
	e.board = NewBoard(&e.handlers, e.specials, e.stats, e.rng)
	e.process = NewProcess(e.board, e.stats, e.specials, &e.handlers, &e.mu)
	e.process.onComplete = e.onProcessComplete
	e.actions = NewActions(e.board, e.process, &e.handlers, false, e.isPlaying, &e.mu)
	e.timer.OnTimesUp = e.onTimesUp
	return e
}

// Setup (re)initializes a session from cfg: builds a fresh board, resets
// stats and the timer, and validates cfg before touching any state.
func (e *Engine) Setup(cfg config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = cfg
	e.actions.freeMoves = cfg.FreeMoves
	e.stats.Reset()
	e.timer.Setup(time.Duration(cfg.DurationSeconds) * time.Second)
	e.playing = false
	e.timerExpired = false
	e.processComplete = false
	e.finalized = false

	if err := e.board.Setup(cfg); err != nil {
		return err
	}
	log.Printf("🎮 board set up: %dx%d, mode=%s", cfg.Rows, cfg.Columns, cfg.Mode)
	return nil
}

// Reset tears a session down: cancels any in-flight cascade, releases the
// board's pieces, and stops the background loop.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.process.Reset()
	e.board.Reset()
	e.stats.Reset()
	e.timer.Setup(0)
	e.playing = false
	if e.running {
		e.running = false
		if e.ticker != nil {
			e.ticker.Stop()
		}
		close(e.stopChan)
	}
}

// StartPlaying begins the session's timer and the per-tick update loop.
func (e *Engine) StartPlaying() {
	e.mu.Lock()
	if e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = true
	e.timer.Start()
	e.stopChan = make(chan struct{})
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(100 * time.Millisecond)
	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.Update(100 * time.Millisecond)
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Println("🎮 session started")
}

// StopPlaying halts the per-tick loop without tearing down the board.
func (e *Engine) StopPlaying() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	e.playing = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 session stopped")
}

// Pause freezes the timer, the cascade, and every board piece.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer.Pause()
	e.process.Pause()
	e.board.Pause()
}

// Resume undoes Pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer.Resume()
	e.process.Resume()
	e.board.Resume()
}

// Update advances the timer by delta. Called by the internal tick loop;
// exposed so callers driving their own clock (e.g. tests) can step it
// directly.
func (e *Engine) Update(delta time.Duration) {
	e.mu.Lock()
	// onTimesUp takes e.mu itself, so expiry is recorded here and handled
	// only after the lock is released.
	expired := false
	e.timer.OnTimesUp = func() { expired = true }
	e.timer.Update(delta)
	e.mu.Unlock()

	if expired {
		e.onTimesUp()
	}
}

func (e *Engine) isPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// ActionMove attempts to swap two adjacent positions.
func (e *Engine) ActionMove(from, to grid.Position) {
	e.actions.ActionMove(from, to)
}

// ActionTap attempts to trigger a special at pos.
func (e *Engine) ActionTap(pos grid.Position) {
	e.actions.ActionTap(pos)
}

func (e *Engine) onTimesUp() {
	e.mu.Lock()
	e.timerExpired = true
	e.mu.Unlock()

	if e.handlers.OnTimesUp != nil {
		e.handlers.OnTimesUp()
	}
	e.maybeFinalize()
}

func (e *Engine) onProcessComplete() {
	e.mu.Lock()
	e.processComplete = true
	e.mu.Unlock()

	e.maybeFinalize()
}

// maybeFinalize ends the session once both the timer has expired and any
// in-flight cascade has settled. Either order is possible: time can run
// out mid-cascade, or the cascade can finish before time is up.
func (e *Engine) maybeFinalize() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized || !e.timerExpired || !e.processComplete {
		return
	}
	e.finalized = true
	e.playing = false
	log.Printf("🏁 session finalized: score=%d grade=%s", e.stats.Score, CalculateGrade(e.stats.Score, e.timer.Elapsed()))
}

// On* setters register presentation-layer callbacks. Safe to call before
// or after Setup; subcomponents share the same handlers pointer.
func (e *Engine) OnMove(fn func(from, to grid.Position, valid bool)) { e.handlers.OnMove = fn }
func (e *Engine) OnMatch(fn func(matches [][]grid.Position, combo int)) {
	e.handlers.OnMatch = fn
}
func (e *Engine) OnPop(fn func(t grid.PieceType, piece *Piece, combo int, isSpecial, causedBySpecial bool)) {
	e.handlers.OnPop = fn
}
func (e *Engine) OnProcessStart(fn func())    { e.handlers.OnProcessStart = fn }
func (e *Engine) OnProcessComplete(fn func()) { e.handlers.OnProcessComplete = fn }
func (e *Engine) OnTimesUp(fn func())         { e.handlers.OnTimesUp = fn }

// StartEventLog begins writing emitted events to filePath as
// newline-delimited JSON.
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog flushes and closes the event log.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// EventLogStats reports the event log's buffer occupancy and drop count.
func (e *Engine) EventLogStats() map[string]any {
	return e.eventLog.Stats()
}

// EngineSnapshot is the read-only view of a session exposed to the
// presentation layer.
type EngineSnapshot struct {
	Rows          int           `json:"rows"`
	Cols          int           `json:"cols"`
	Grid          [][]int       `json:"grid"`
	Stats         Snapshot      `json:"stats"`
	TimeRemaining time.Duration `json:"timeRemaining"`
	TimerState    string        `json:"timerState"`
	Playing       bool          `json:"playing"`
	Finalized     bool          `json:"finalized"`
}

// Snapshot returns a read-only copy of the current session state.
func (e *Engine) Snapshot() EngineSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows := make([][]int, e.board.Rows)
	for r := range rows {
		rows[r] = make([]int, e.board.Cols)
		for c := range rows[r] {
			rows[r][c] = int(e.board.GetTypeByPosition(grid.Position{Row: r, Col: c}))
		}
	}

	return EngineSnapshot{
		Rows:          e.board.Rows,
		Cols:          e.board.Cols,
		Grid:          rows,
		Stats:         e.stats.Snapshot(e.timer.Elapsed()),
		TimeRemaining: e.timer.TimeRemaining(),
		TimerState:    e.timer.State().String(),
		Playing:       e.playing,
		Finalized:     e.finalized,
	}
}
