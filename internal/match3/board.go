package match3

import (
	"math/rand"
	"sync"

	"github.com/pkg/errors"

	"connectgame/internal/config"
	"connectgame/internal/grid"
)

// Board owns the grid of piece types together with the parallel matrix of
// Piece handles the presentation layer hangs animation state off of. It is
// the only component that mutates the grid directly; everything else goes
// through its methods so the piece matrix and the grid never drift apart.
type Board struct {
	Grid *grid.Grid
	Rows int
	Cols int

	pieces [][]*Piece
	pool   []*Piece
	nextID uint64

	commons           []grid.PieceType
	specialKindByType map[grid.PieceType]SpecialKind
	typeBySpecialKind map[SpecialKind]grid.PieceType

	rng      *rand.Rand
	handlers *EventHandlers
	specials *SpecialRegistry
	stats    *Stats
}

// NewBoard wires a board to the shared event handlers, special registry
// and stats tracker. rng is retained for grid creation and refill.
func NewBoard(handlers *EventHandlers, specials *SpecialRegistry, stats *Stats, rng *rand.Rand) *Board {
	return &Board{handlers: handlers, specials: specials, stats: stats, rng: rng}
}

// Setup allocates a fresh grid and piece matrix for cfg, discarding any
// previous session's state.
func (b *Board) Setup(cfg config.Config) error {
	commonCount, ok := cfg.Mode.Commons()
	if !ok {
		return errors.Errorf("board: unknown mode %q", cfg.Mode)
	}

	b.Reset()
	b.Rows, b.Cols = cfg.Rows, cfg.Columns

	b.commons = make([]grid.PieceType, commonCount)
	for i := range b.commons {
		b.commons[i] = grid.PieceType(i + 1)
	}

	b.specialKindByType = map[grid.PieceType]SpecialKind{
		grid.PieceType(commonCount + 1): SpecialRow,
		grid.PieceType(commonCount + 2): SpecialColumn,
		grid.PieceType(commonCount + 3): SpecialColour,
		grid.PieceType(commonCount + 4): SpecialArea,
	}
	b.typeBySpecialKind = make(map[SpecialKind]grid.PieceType, len(b.specialKindByType))
	for t, k := range b.specialKindByType {
		b.typeBySpecialKind[k] = t
	}

	b.Grid = grid.Create(cfg.Rows, cfg.Columns, b.commons, b.rng)
	b.pieces = make([][]*Piece, cfg.Rows)
	for r := range b.pieces {
		b.pieces[r] = make([]*Piece, cfg.Columns)
		for c := 0; c < cfg.Columns; c++ {
			b.pieces[r][c] = b.spawn(r, c, b.Grid.At(grid.Position{Row: r, Col: c}))
		}
	}
	return nil
}

// Reset releases every live piece back to the pool and drops the grid.
// Safe to call on an already-empty board.
func (b *Board) Reset() {
	for _, row := range b.pieces {
		for _, p := range row {
			if p != nil {
				b.release(p)
			}
		}
	}
	b.pieces = nil
	b.Grid = nil
}

func (b *Board) acquire() *Piece {
	n := len(b.pool)
	if n == 0 {
		b.nextID++
		return &Piece{ID: b.nextID}
	}
	p := b.pool[n-1]
	b.pool = b.pool[:n-1]
	return p
}

func (b *Board) release(p *Piece) {
	p.reset()
	b.pool = append(b.pool, p)
}

func (b *Board) spawn(r, c int, t grid.PieceType) *Piece {
	p := b.acquire()
	p.Row, p.Col, p.Type = r, c, t
	return p
}

// GetPieceByPosition returns the piece at p, or nil if out of bounds or
// the cell is empty.
func (b *Board) GetPieceByPosition(p grid.Position) *Piece {
	if p.Row < 0 || p.Row >= b.Rows || p.Col < 0 || p.Col >= b.Cols {
		return nil
	}
	return b.pieces[p.Row][p.Col]
}

// GetTypeByPosition reads the grid's type at p directly.
func (b *Board) GetTypeByPosition(p grid.Position) grid.PieceType {
	return b.Grid.At(p)
}

// IsSpecial reports whether t is one of the four special types, and which.
func (b *Board) IsSpecial(t grid.PieceType) (SpecialKind, bool) {
	k, ok := b.specialKindByType[t]
	return k, ok
}

// SpecialType returns the piece type assigned to a special kind.
func (b *Board) SpecialType(kind SpecialKind) grid.PieceType {
	return b.typeBySpecialKind[kind]
}

// Commons returns the session's common-type palette.
func (b *Board) Commons() []grid.PieceType {
	return b.commons
}

// popOne runs piece's special trigger (if any) and commits its grid
// mutation and stats bookkeeping, but does not animate, release or fire
// onPop yet — that is left to the caller so a batch of pops can animate
// together. ok is false if the cell was already emptied, e.g. by a
// sibling special's trigger radius.
func (b *Board) popOne(piece *Piece, causedBySpecial bool, combo int) (t grid.PieceType, isSpecial bool, ok bool) {
	pos := piece.Position()
	if b.Grid.At(pos) == grid.Empty {
		return 0, false, false
	}

	kind, isSpecial := b.IsSpecial(piece.Type)
	if isSpecial {
		if handler := b.specials.Get(kind); handler != nil {
			handler.Trigger(b, pos, combo)
		}
	}

	// The trigger above may have already removed this exact cell if another
	// special's radius overlapped it; nothing left to do in that case.
	pos = piece.Position()
	if b.Grid.At(pos) == grid.Empty {
		return 0, false, false
	}

	t = piece.Type
	piece.Locked = true
	b.Grid.Set(pos, grid.Empty)
	b.pieces[pos.Row][pos.Col] = nil
	if b.stats != nil {
		b.stats.RegisterPop(causedBySpecial, isSpecial)
	}
	return t, isSpecial, true
}

// finishPop releases piece back to the pool and fires onPop. Called once
// piece's pop animation (if any) has finished.
func (b *Board) finishPop(piece *Piece, t grid.PieceType, isSpecial, causedBySpecial bool, combo int) {
	b.release(piece)
	if b.handlers != nil && b.handlers.OnPop != nil {
		b.handlers.OnPop(t, piece, combo, isSpecial, causedBySpecial)
	}
}

// PopPiece removes a single piece from the board. If it is a special, its
// trigger effect runs first and may itself remove the piece (e.g. a
// colour-blast whose most-common type happens to include this cell is
// never possible since specials are never "common", but a row/column/area
// trigger overlapping another special recurses through this same method).
// causedBySpecial marks whether this particular pop was caused by another
// special's trigger radius, as opposed to a direct match or tap/swap.
func (b *Board) PopPiece(piece *Piece, causedBySpecial bool, combo int) {
	if piece == nil {
		return
	}
	t, isSpecial, ok := b.popOne(piece, causedBySpecial, combo)
	if !ok {
		return
	}

	if b.handlers != nil && b.handlers.AnimatePop != nil {
		b.handlers.AnimatePop(piece)
	}
	b.finishPop(piece, t, isSpecial, causedBySpecial, combo)
}

// PopPieces pops every position that still holds a live piece. Every pop's
// grid mutation commits immediately (in order), but the pop animations run
// concurrently and PopPieces waits for all of them before returning, so
// the sibling pops of a row-blast animate together rather than in
// sequence.
func (b *Board) PopPieces(positions []grid.Position, causedBySpecial bool, combo int) {
	type popped struct {
		piece     *Piece
		t         grid.PieceType
		isSpecial bool
	}
	var batch []popped
	for _, pos := range positions {
		piece := b.GetPieceByPosition(pos)
		if piece == nil {
			continue
		}
		t, isSpecial, ok := b.popOne(piece, causedBySpecial, combo)
		if !ok {
			continue
		}
		batch = append(batch, popped{piece, t, isSpecial})
	}

	if b.handlers != nil && b.handlers.AnimatePop != nil {
		var wg sync.WaitGroup
		wg.Add(len(batch))
		for _, pp := range batch {
			go func(p *Piece) {
				defer wg.Done()
				b.handlers.AnimatePop(p)
			}(pp.piece)
		}
		wg.Wait()
	}

	for _, pp := range batch {
		b.finishPop(pp.piece, pp.t, pp.isSpecial, causedBySpecial, combo)
	}
}

// SpawnPiece places a piece of type t at pos, replacing whatever was
// there (if anything).
func (b *Board) SpawnPiece(pos grid.Position, t grid.PieceType) *Piece {
	if existing := b.GetPieceByPosition(pos); existing != nil {
		b.pieces[pos.Row][pos.Col] = nil
		b.release(existing)
	}
	b.Grid.Set(pos, t)
	piece := b.spawn(pos.Row, pos.Col, t)
	b.pieces[pos.Row][pos.Col] = piece
	return piece
}

// SwapPieces exchanges the grid types at a and bPos and updates both
// pieces' recorded coordinates to match.
func (b *Board) SwapPieces(a, bPos grid.Position) {
	b.Grid.Swap(a, bPos)
	pa, pb := b.pieces[a.Row][a.Col], b.pieces[bPos.Row][bPos.Col]
	if pa != nil {
		pa.Row, pa.Col = bPos.Row, bPos.Col
	}
	if pb != nil {
		pb.Row, pb.Col = a.Row, a.Col
	}
	b.pieces[a.Row][a.Col], b.pieces[bPos.Row][bPos.Col] = pb, pa
}

// ApplyGravity drops pieces to fill empties below them and keeps the
// piece matrix in sync with the grid's new layout. Fall animations are
// fired and not awaited here: they run concurrently with the refill step
// that follows. Nothing waits for them, so a round's checkpoint can run
// while fall animations are still in flight.
func (b *Board) ApplyGravity() []grid.Change {
	changes := b.Grid.ApplyGravity()
	for _, ch := range changes {
		p := b.pieces[ch.From.Row][ch.From.Col]
		b.pieces[ch.From.Row][ch.From.Col] = nil
		if p != nil {
			p.Row, p.Col = ch.To.Row, ch.To.Col
		}
		b.pieces[ch.To.Row][ch.To.Col] = p
	}

	if b.handlers != nil && b.handlers.AnimateFall != nil {
		for _, ch := range changes {
			p := b.pieces[ch.To.Row][ch.To.Col]
			if p == nil {
				continue
			}
			p.Locked = true
			go func(piece *Piece, target grid.Position) {
				b.handlers.AnimateFall(piece, target.Row, target.Col)
				piece.Locked = false
			}(p, ch.To)
		}
	}
	return changes
}

// FillUp refills every empty cell and spawns a piece for each, in the
// same reverse row-major order the grid returns. Spawn animations run
// concurrently across the whole batch and are awaited before returning.
func (b *Board) FillUp() []*Piece {
	positions := b.Grid.FillUp(b.commons, b.rng)
	spawned := make([]*Piece, 0, len(positions))
	for _, pos := range positions {
		piece := b.spawn(pos.Row, pos.Col, b.Grid.At(pos))
		b.pieces[pos.Row][pos.Col] = piece
		spawned = append(spawned, piece)
	}

	if b.handlers != nil && b.handlers.AnimateSpawn != nil {
		var wg sync.WaitGroup
		wg.Add(len(spawned))
		for _, p := range spawned {
			p.Locked = true
			go func(piece *Piece) {
				defer wg.Done()
				b.handlers.AnimateSpawn(piece)
				piece.Locked = false
			}(p)
		}
		wg.Wait()
	}
	return spawned
}

// Pause marks every live piece paused; Resume clears it. Both are no-ops
// on the grid itself, forwarding only to the pieces so the presentation
// layer can freeze in-flight animations.
func (b *Board) Pause() {
	for _, row := range b.pieces {
		for _, p := range row {
			if p != nil {
				p.Paused = true
			}
		}
	}
}

func (b *Board) Resume() {
	for _, row := range b.pieces {
		for _, p := range row {
			if p != nil {
				p.Paused = false
			}
		}
	}
}
