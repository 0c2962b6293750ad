package match3

import "connectgame/internal/grid"

// SpecialKind is the closed set of special-piece variants. There are
// exactly four; adding a fifth means adding a case everywhere this type
// is switched on.
type SpecialKind int

const (
	SpecialNone SpecialKind = iota
	SpecialRow
	SpecialColumn
	SpecialColour
	SpecialArea
)

func (k SpecialKind) String() string {
	switch k {
	case SpecialRow:
		return "row"
	case SpecialColumn:
		return "column"
	case SpecialColour:
		return "colour"
	case SpecialArea:
		return "area"
	default:
		return "none"
	}
}

// SpecialHandler is the strategy contract every special kind implements:
// Process claims matches during a cascade round and spawns its piece;
// Trigger executes the pop effect once that piece is itself popped.
type SpecialHandler interface {
	Kind() SpecialKind
	Process(b *Board, matches [][]grid.Position, round int) [][]grid.Position
	Trigger(b *Board, pos grid.Position, combo int)
}

// SpecialRegistry holds the four handlers in a fixed processing order:
// row, column, colour, area. The order is observable — a four-long
// horizontal match that crosses a vertical match becomes a row special,
// not an area special, because row-blast claims it before area-blast
// sees it.
type SpecialRegistry struct {
	handlers []SpecialHandler
	byKind   map[SpecialKind]SpecialHandler
}

// NewSpecialRegistry builds the registry with the canonical handler order.
func NewSpecialRegistry() *SpecialRegistry {
	handlers := []SpecialHandler{
		&rowBlastHandler{},
		&columnBlastHandler{},
		&colourBlastHandler{},
		&areaBlastHandler{},
	}
	byKind := make(map[SpecialKind]SpecialHandler, len(handlers))
	for _, h := range handlers {
		byKind[h.Kind()] = h
	}
	return &SpecialRegistry{handlers: handlers, byKind: byKind}
}

// Get returns the handler for kind, or nil for SpecialNone.
func (r *SpecialRegistry) Get(kind SpecialKind) SpecialHandler {
	return r.byKind[kind]
}

// ProcessAll runs every handler in registration order against matches,
// each handler seeing only what the previous one left unclaimed, and
// returns whatever remains unclaimed by any handler.
func (r *SpecialRegistry) ProcessAll(b *Board, matches [][]grid.Position, round int) [][]grid.Position {
	for _, h := range r.handlers {
		matches = h.Process(b, matches, round)
	}
	return matches
}

func isHorizontal(m []grid.Position) bool {
	return len(m) > 1 && m[0].Row == m[1].Row
}

func isVertical(m []grid.Position) bool {
	return len(m) > 1 && m[0].Col == m[1].Col
}

// spawnMidpoint consumes match m: pops its cells as a regular (non-special
// caused) pop and spawns a special of kind at its floor(len/2) position.
func spawnMidpoint(b *Board, m []grid.Position, kind SpecialKind, round int) {
	b.PopPieces(m, false, round)
	mid := m[len(m)/2]
	b.SpawnPiece(mid, b.SpecialType(kind))
}

// --- row blast ---------------------------------------------------------

type rowBlastHandler struct{}

func (rowBlastHandler) Kind() SpecialKind { return SpecialRow }

func (h rowBlastHandler) Process(b *Board, matches [][]grid.Position, round int) [][]grid.Position {
	var remaining [][]grid.Position
	for _, m := range matches {
		if len(m) == 4 && isHorizontal(m) {
			spawnMidpoint(b, m, SpecialRow, round)
			continue
		}
		remaining = append(remaining, m)
	}
	return remaining
}

// Trigger pops every other cell in the special's row; the special's own
// cell is removed separately by the Board.PopPiece caller.
func (h rowBlastHandler) Trigger(b *Board, pos grid.Position, combo int) {
	var positions []grid.Position
	for c := 0; c < b.Cols; c++ {
		if c == pos.Col {
			continue
		}
		positions = append(positions, grid.Position{Row: pos.Row, Col: c})
	}
	b.PopPieces(positions, true, combo)
}

// --- column blast -------------------------------------------------------

type columnBlastHandler struct{}

func (columnBlastHandler) Kind() SpecialKind { return SpecialColumn }

func (h columnBlastHandler) Process(b *Board, matches [][]grid.Position, round int) [][]grid.Position {
	var remaining [][]grid.Position
	for _, m := range matches {
		if len(m) == 4 && isVertical(m) {
			spawnMidpoint(b, m, SpecialColumn, round)
			continue
		}
		remaining = append(remaining, m)
	}
	return remaining
}

func (h columnBlastHandler) Trigger(b *Board, pos grid.Position, combo int) {
	var positions []grid.Position
	for r := 0; r < b.Rows; r++ {
		if r == pos.Row {
			continue
		}
		positions = append(positions, grid.Position{Row: r, Col: pos.Col})
	}
	b.PopPieces(positions, true, combo)
}

// --- colour blast ---------------------------------------------------------

type colourBlastHandler struct{}

func (colourBlastHandler) Kind() SpecialKind { return SpecialColour }

func (h colourBlastHandler) Process(b *Board, matches [][]grid.Position, round int) [][]grid.Position {
	var remaining [][]grid.Position
	for _, m := range matches {
		if len(m) >= 5 {
			spawnMidpoint(b, m, SpecialColour, round)
			continue
		}
		remaining = append(remaining, m)
	}
	return remaining
}

// Trigger pops every piece of the board's current most-common common
// type; special types are never chosen. Ties break by last-seen in
// row-major order.
func (h colourBlastHandler) Trigger(b *Board, pos grid.Position, combo int) {
	counts := b.Grid.CountByType()
	var best grid.PieceType
	bestCount := 0
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			t := b.Grid.At(grid.Position{Row: r, Col: c})
			if _, special := b.IsSpecial(t); t == grid.Empty || special {
				continue
			}
			if counts[t] >= bestCount {
				bestCount = counts[t]
				best = t
			}
		}
	}
	if bestCount == 0 {
		return
	}
	b.PopPieces(b.Grid.PositionsOfType(best), true, combo)
}

// --- area blast -------------------------------------------------------

type areaBlastHandler struct{}

func (areaBlastHandler) Kind() SpecialKind { return SpecialArea }

// Process claims pairs of distinct matches that share a grid position —
// the signature of an L, T, or + shaped cascade step — and spawns an
// area special at the shared cell.
func (h areaBlastHandler) Process(b *Board, matches [][]grid.Position, round int) [][]grid.Position {
	claimed := make(map[int]bool, len(matches))
	for i := 0; i < len(matches); i++ {
		if claimed[i] {
			continue
		}
		for j := i + 1; j < len(matches); j++ {
			if claimed[j] {
				continue
			}
			shared, ok := sharedPosition(matches[i], matches[j])
			if !ok {
				continue
			}
			b.PopPieces(dedupPositions(matches[i], matches[j]), false, round)
			b.SpawnPiece(shared, b.SpecialType(SpecialArea))
			claimed[i] = true
			claimed[j] = true
			break
		}
	}

	var remaining [][]grid.Position
	for i, m := range matches {
		if !claimed[i] {
			remaining = append(remaining, m)
		}
	}
	return remaining
}

// Trigger pops the 3x3 neighbourhood around the special, excluding its
// own cell.
func (h areaBlastHandler) Trigger(b *Board, pos grid.Position, combo int) {
	var positions []grid.Position
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			p := grid.Position{Row: pos.Row + dr, Col: pos.Col + dc}
			if b.Grid.InBounds(p) {
				positions = append(positions, p)
			}
		}
	}
	b.PopPieces(positions, true, combo)
}

func sharedPosition(a, b []grid.Position) (grid.Position, bool) {
	set := make(map[grid.Position]bool, len(a))
	for _, p := range a {
		set[p] = true
	}
	for _, p := range b {
		if set[p] {
			return p, true
		}
	}
	return grid.Position{}, false
}

func dedupPositions(lists ...[]grid.Position) []grid.Position {
	seen := make(map[grid.Position]bool)
	var out []grid.Position
	for _, l := range lists {
		for _, p := range l {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
