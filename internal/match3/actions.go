package match3

import (
	"sync"

	"connectgame/internal/grid"
)

// Actions validates and commits the two player-facing moves: swapping two
// adjacent pieces, and tapping a special to trigger it directly.
type Actions struct {
	board     *Board
	process   *Process
	handlers  *EventHandlers
	freeMoves bool
	playing   func() bool
	mu        *sync.Mutex // shared with Engine and Process; guards every board/stats mutation
}

// NewActions wires an action validator to the board and cascade processor
// it drives. playing reports whether the session currently accepts input.
// mu is the Engine's own lock, shared so an action never runs concurrently
// with a cascade round.
func NewActions(board *Board, process *Process, handlers *EventHandlers, freeMoves bool, playing func() bool, mu *sync.Mutex) *Actions {
	return &Actions{board: board, process: process, handlers: handlers, freeMoves: freeMoves, playing: playing, mu: mu}
}

// ActionMove attempts to swap the pieces at from and to. A swap involving
// a special piece is always valid; otherwise it is valid only if it would
// produce a match, or freeMoves is set. Invalid swaps still fire onMove
// but leave the board untouched. No-op while the cascade is running: input
// is accepted but rejected until the board settles.
func (a *Actions) ActionMove(from, to grid.Position) {
	if !a.playing() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.process.Running() {
		return
	}
	pFrom := a.board.GetPieceByPosition(from)
	pTo := a.board.GetPieceByPosition(to)
	if pFrom == nil || pTo == nil || pFrom.Locked || pTo.Locked {
		return
	}

	_, fromSpecial := a.board.IsSpecial(pFrom.Type)
	_, toSpecial := a.board.IsSpecial(pTo.Type)
	hasSpecial := fromSpecial || toSpecial

	valid := hasSpecial || a.freeMoves
	if !valid {
		clone := a.board.Grid.Clone()
		clone.Swap(from, to)
		valid = len(clone.GetMatches([]grid.Position{from, to}, 3)) > 0
	}

	if a.handlers != nil && a.handlers.OnMove != nil {
		a.handlers.OnMove(from, to, valid)
	}
	if !valid {
		return
	}

	a.board.SwapPieces(from, to)
	if pFrom.OnMove != nil {
		pFrom.OnMove(from, to)
	}
	if pTo.OnMove != nil {
		pTo.OnMove(to, from)
	}

	pFrom.Locked, pTo.Locked = true, true
	if a.handlers != nil && a.handlers.AnimateSwap != nil {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); a.handlers.AnimateSwap(pFrom, pFrom.Row, pFrom.Col) }()
		go func() { defer wg.Done(); a.handlers.AnimateSwap(pTo, pTo.Row, pTo.Col) }()
		wg.Wait()
	}
	pFrom.Locked, pTo.Locked = false, false

	if hasSpecial {
		involving := a.board.Grid.GetMatches([]grid.Position{from, to}, 3)
		if len(involving) == 0 {
			if fromSpecial {
				a.board.PopPiece(pFrom, false, 1)
			}
			if toSpecial {
				a.board.PopPiece(pTo, false, 1)
			}
		}
	}

	a.process.Start()
}

// ActionTap triggers the special piece at pos directly. No-op on a
// non-special cell, a locked piece, or while the cascade is running.
func (a *Actions) ActionTap(pos grid.Position) {
	if !a.playing() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.process.Running() {
		return
	}
	piece := a.board.GetPieceByPosition(pos)
	if piece == nil || piece.Locked {
		return
	}
	if _, ok := a.board.IsSpecial(piece.Type); !ok {
		return
	}

	if piece.OnTap != nil {
		piece.OnTap(pos)
	}
	a.board.PopPiece(piece, false, 1)
	a.process.Start()
}
