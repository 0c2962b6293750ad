package match3

import "connectgame/internal/grid"

// Piece is a single grid cell's presentation-facing handle: a stable
// identity plus the hooks the presentation layer attaches for per-piece
// animation. Pieces are pooled and reused across pops and respawns, so
// callers must not retain a *Piece past the pop event that released it.
type Piece struct {
	ID     uint64
	Row    int
	Col    int
	Type   grid.PieceType
	Locked bool // true while a swap, pop, fall or spawn animation claims this piece
	Paused bool

	OnMove func(from, to grid.Position)
	OnTap  func(pos grid.Position)
}

// Position returns the piece's current grid coordinate.
func (p *Piece) Position() grid.Position {
	return grid.Position{Row: p.Row, Col: p.Col}
}

func (p *Piece) reset() {
	p.Locked = false
	p.Paused = false
	p.OnMove = nil
	p.OnTap = nil
}
