package match3

import (
	"math/rand"
	"testing"

	"connectgame/internal/config"
	"connectgame/internal/grid"
)

func testBoard(t *testing.T, cfg config.Config) *Board {
	t.Helper()
	handlers := &EventHandlers{}
	specials := NewSpecialRegistry()
	rng := rand.New(rand.NewSource(42))
	b := NewBoard(handlers, specials, NewStats(), rng)
	if err := b.Setup(cfg); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	return b
}

func TestBoardSetupPopulatesPieceMatrix(t *testing.T) {
	cfg := config.Config{Rows: 6, Columns: 6, Mode: config.ModeNormal, DurationSeconds: 60}
	b := testBoard(t, cfg)

	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Columns; c++ {
			pos := grid.Position{Row: r, Col: c}
			piece := b.GetPieceByPosition(pos)
			if piece == nil {
				t.Fatalf("expected a piece at %v, got nil", pos)
			}
			if piece.Type != b.GetTypeByPosition(pos) {
				t.Fatalf("piece type mismatch at %v: piece=%v grid=%v", pos, piece.Type, b.GetTypeByPosition(pos))
			}
		}
	}
}

func TestBoardSpecialTypesAreAfterCommons(t *testing.T) {
	cfg := config.Config{Rows: 5, Columns: 5, Mode: config.ModeTest, DurationSeconds: 60}
	b := testBoard(t, cfg)

	commonCount, _ := cfg.Mode.Commons()
	for i, kind := range []SpecialKind{SpecialRow, SpecialColumn, SpecialColour, SpecialArea} {
		want := grid.PieceType(commonCount + 1 + i)
		if got := b.SpecialType(kind); got != want {
			t.Fatalf("kind %v: expected type %v, got %v", kind, want, got)
		}
		if k, ok := b.IsSpecial(want); !ok || k != kind {
			t.Fatalf("IsSpecial(%v) = (%v, %v), want (%v, true)", want, k, ok, kind)
		}
	}
}

func TestBoardPopPieceReleasesAndPoolsBack(t *testing.T) {
	cfg := config.Config{Rows: 5, Columns: 5, Mode: config.ModeTest, DurationSeconds: 60}
	b := testBoard(t, cfg)

	pos := grid.Position{Row: 2, Col: 2}
	piece := b.GetPieceByPosition(pos)
	poolBefore := len(b.pool)

	b.PopPiece(piece, false, 1)

	if b.GetPieceByPosition(pos) != nil {
		t.Fatal("expected piece removed from matrix after pop")
	}
	if b.GetTypeByPosition(pos) != grid.Empty {
		t.Fatal("expected grid cell empty after pop")
	}
	if len(b.pool) != poolBefore+1 {
		t.Fatalf("expected pool to grow by 1, got %d -> %d", poolBefore, len(b.pool))
	}
}

func TestBoardSwapPiecesUpdatesCoordinates(t *testing.T) {
	cfg := config.Config{Rows: 5, Columns: 5, Mode: config.ModeTest, DurationSeconds: 60}
	b := testBoard(t, cfg)

	a := grid.Position{Row: 1, Col: 1}
	c := grid.Position{Row: 1, Col: 2}
	pa := b.GetPieceByPosition(a)
	pc := b.GetPieceByPosition(c)

	b.SwapPieces(a, c)

	if pa.Row != c.Row || pa.Col != c.Col {
		t.Fatalf("piece a expected to move to %v, got (%d,%d)", c, pa.Row, pa.Col)
	}
	if pc.Row != a.Row || pc.Col != a.Col {
		t.Fatalf("piece c expected to move to %v, got (%d,%d)", a, pc.Row, pc.Col)
	}
	if b.GetPieceByPosition(c) != pa || b.GetPieceByPosition(a) != pc {
		t.Fatal("piece matrix did not reflect swap")
	}
}

func TestBoardFillUpSpawnsPiecesForEveryEmpty(t *testing.T) {
	cfg := config.Config{Rows: 5, Columns: 5, Mode: config.ModeTest, DurationSeconds: 60}
	b := testBoard(t, cfg)

	positions := []grid.Position{{Row: 0, Col: 0}, {Row: 2, Col: 3}}
	for _, p := range positions {
		b.PopPiece(b.GetPieceByPosition(p), false, 1)
	}

	spawned := b.FillUp()
	if len(spawned) != len(positions) {
		t.Fatalf("expected %d spawned pieces, got %d", len(positions), len(spawned))
	}
	for _, p := range positions {
		if b.GetPieceByPosition(p) == nil {
			t.Fatalf("expected a piece at %v after FillUp", p)
		}
	}
}
