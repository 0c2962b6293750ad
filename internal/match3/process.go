package match3

import (
	"sync"

	"connectgame/internal/grid"
)

// Process drives the cascade that follows a valid move or tap: detect
// matches, let specials claim their patterns, pop what's left, apply
// gravity, refill, and repeat until the board is quiet. Each round runs
// as one step on the shared async queue so a pause lands between rounds,
// never mid-round.
type Process struct {
	board    *Board
	stats    *Stats
	specials *SpecialRegistry
	handlers *EventHandlers
	queue    *asyncQueue
	mu       *sync.Mutex // shared with Engine; guards every board/stats mutation

	round int

	// onComplete is set by Engine to check whether the session should
	// finalize once the cascade settles.
	onComplete func()
}

// NewProcess wires a cascade processor to the board, stats tracker and
// special registry it operates on. mu is the Engine's own lock, shared so
// a round never runs concurrently with an action.
func NewProcess(board *Board, stats *Stats, specials *SpecialRegistry, handlers *EventHandlers, mu *sync.Mutex) *Process {
	return &Process{board: board, stats: stats, specials: specials, handlers: handlers, mu: mu, queue: newAsyncQueue()}
}

// Start begins a new cascade, or is a no-op if one is already running.
func (p *Process) Start() {
	if p.queue.isBusy() {
		return
	}
	if p.handlers != nil && p.handlers.OnProcessStart != nil {
		p.handlers.OnProcessStart()
	}
	p.round = 0
	p.queue.enqueue(p.runRound)
	p.queue.start()
}

// Pause stalls the cascade between rounds.
func (p *Process) Pause() { p.queue.pause() }

// Resume lets a stalled cascade continue.
func (p *Process) Resume() { p.queue.resume() }

// Reset cancels any in-flight cascade and drops its round counter.
func (p *Process) Reset() {
	p.queue.reset()
	p.round = 0
}

// Running reports whether a cascade is mid-flight.
func (p *Process) Running() bool {
	return p.queue.isBusy()
}

// runRound executes one full match -> specials -> pop -> gravity -> refill
// step, then either enqueues the next round or signals completion.
func (p *Process) runRound() {
	p.mu.Lock()
	p.round++
	round := p.round

	matches := p.board.Grid.GetMatches(nil, 3)
	p.stats.RegisterMatch(matches, round)

	remaining := p.specials.ProcessAll(p.board, matches, round)
	p.board.PopPieces(flatten(remaining), false, round)

	p.board.ApplyGravity()
	p.board.FillUp()

	stillMatches := p.board.Grid.GetMatches(nil, 3)
	emptyLeft := p.board.Grid.GetEmptyPositions()
	done := len(stillMatches) == 0 && len(emptyLeft) == 0
	p.mu.Unlock()

	if p.handlers != nil && p.handlers.OnMatch != nil && len(matches) > 0 {
		p.handlers.OnMatch(matches, round)
	}

	if !done {
		p.queue.enqueue(p.runRound)
		return
	}

	if p.handlers != nil && p.handlers.OnProcessComplete != nil {
		p.handlers.OnProcessComplete()
	}
	if p.onComplete != nil {
		p.onComplete()
	}
}

func flatten(matches [][]grid.Position) []grid.Position {
	var out []grid.Position
	for _, m := range matches {
		out = append(out, m...)
	}
	return out
}
