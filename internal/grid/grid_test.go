package grid

import (
	"math/rand"
	"testing"
)

func commons(n int) []PieceType {
	out := make([]PieceType, n)
	for i := range out {
		out[i] = PieceType(i + 1)
	}
	return out
}

// TestCreateHasNoPreMadeMatches verifies the grid invariant that a freshly
// created grid never contains a three-in-a-row.
func TestCreateHasNoPreMadeMatches(t *testing.T) {
	tests := []struct {
		name        string
		rows, cols  int
		commonCount int
	}{
		{"test mode 3 commons", 9, 7, 3},
		{"easy mode 4 commons", 5, 5, 4},
		{"normal mode 5 commons", 9, 7, 5},
		{"hard mode 6 commons", 16, 16, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))
			g := Create(tt.rows, tt.cols, commons(tt.commonCount), rng)
			if matches := g.GetMatches(nil, 3); len(matches) != 0 {
				t.Fatalf("expected no matches in freshly created grid, got %d: %v", len(matches), matches)
			}
		})
	}
}

func TestSwapIsInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := Create(6, 6, commons(4), rng)
	before := g.Clone()

	a := Position{1, 1}
	b := Position{4, 3}
	g.Swap(a, b)
	g.Swap(a, b)

	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			p := Position{r, c}
			if g.At(p) != before.At(p) {
				t.Fatalf("cell %v changed after swap/unswap: got %v want %v", p, g.At(p), before.At(p))
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := Create(5, 5, commons(3), rng)
	clone := g.Clone()

	clone.Swap(Position{0, 0}, Position{0, 1})
	clone.Set(Position{2, 2}, Empty)

	if g.At(Position{2, 2}) == Empty {
		t.Fatal("mutating clone affected original grid")
	}
}

func TestApplyGravityIdempotent(t *testing.T) {
	g := New(4, 3)
	g.Set(Position{0, 0}, 1)
	g.Set(Position{3, 0}, 2)
	g.Set(Position{1, 1}, 3)

	first := g.ApplyGravity()
	if len(first) == 0 {
		t.Fatal("expected gravity to move at least one piece")
	}
	second := g.ApplyGravity()
	if len(second) != 0 {
		t.Fatalf("expected gravity to be idempotent, got further changes: %v", second)
	}
}

func TestApplyGravityNoFloatingEmpties(t *testing.T) {
	g := New(5, 1)
	g.Set(Position{0, 0}, 1)
	g.Set(Position{2, 0}, 2)
	g.Set(Position{4, 0}, 3)

	g.ApplyGravity()

	seenNonEmpty := false
	for r := 0; r < g.Rows; r++ {
		if g.At(Position{r, 0}) != Empty {
			seenNonEmpty = true
			continue
		}
		if seenNonEmpty {
			t.Fatalf("floating empty cell at row %d below a piece after gravity", r)
		}
	}
}

func TestFillUpFillsExactlyTheEmptyCount(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g := Create(6, 6, commons(4), rng)
	g.Set(Position{0, 0}, Empty)
	g.Set(Position{3, 2}, Empty)
	g.Set(Position{5, 5}, Empty)

	before := len(g.GetEmptyPositions())
	filled := g.FillUp(commons(4), rng)

	if len(filled) != before {
		t.Fatalf("expected %d filled positions, got %d", before, len(filled))
	}
	if len(g.GetEmptyPositions()) != 0 {
		t.Fatal("expected no empty cells after FillUp")
	}
}

func TestFillUpReturnsReverseRowMajorOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := New(3, 3)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			g.Set(Position{r, c}, 1)
		}
	}
	g.Set(Position{0, 1}, Empty)
	g.Set(Position{1, 2}, Empty)

	filled := g.FillUp(commons(3), rng)
	want := []Position{{1, 2}, {0, 1}}
	if len(filled) != len(want) {
		t.Fatalf("expected %d positions, got %d", len(want), len(filled))
	}
	for i, p := range want {
		if filled[i] != p {
			t.Fatalf("position %d: got %v want %v", i, filled[i], p)
		}
	}
}

func TestGetMatchesFilter(t *testing.T) {
	g := New(3, 5)
	for c := 0; c < 3; c++ {
		g.Set(Position{0, c}, 1)
	}
	for c := 2; c < 5; c++ {
		g.Set(Position{1, c}, 2)
	}

	all := g.GetMatches(nil, 3)
	if len(all) != 2 {
		t.Fatalf("expected 2 matches without filter, got %d", len(all))
	}

	filtered := g.GetMatches([]Position{{0, 0}}, 3)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 match with filter on row 0, got %d", len(filtered))
	}
	for _, p := range filtered[0] {
		if p.Row != 0 {
			t.Fatalf("filtered match leaked unrelated row: %v", filtered[0])
		}
	}
}

func TestGetMatchesOrdersHorizontalBeforeVertical(t *testing.T) {
	g := New(4, 4)
	for c := 0; c < 3; c++ {
		g.Set(Position{2, c}, 1)
	}
	for r := 0; r < 3; r++ {
		g.Set(Position{r, 3}, 2)
	}

	matches := g.GetMatches(nil, 3)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0][0].Row != 2 || matches[0][0].Col != 0 {
		t.Fatalf("expected horizontal match first, got %v", matches[0])
	}
	if matches[1][0].Col != 3 {
		t.Fatalf("expected vertical match second, got %v", matches[1])
	}
}

func TestMostCommonTypeTieBreakIsLastSeenRowMajor(t *testing.T) {
	g := New(1, 4)
	g.Set(Position{0, 0}, 1)
	g.Set(Position{0, 1}, 2)
	g.Set(Position{0, 2}, 1)
	g.Set(Position{0, 3}, 2)

	best, ok := g.MostCommonType()
	if !ok {
		t.Fatal("expected a most-common type")
	}
	if best != 2 {
		t.Fatalf("expected last-seen tie-break to pick type 2, got %v", best)
	}
}
