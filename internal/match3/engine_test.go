package match3

import (
	"math/rand"
	"testing"
	"time"

	"connectgame/internal/config"
	"connectgame/internal/grid"
)

func TestEngineSetupValidatesConfig(t *testing.T) {
	e := NewEngineWithRNG(rand.New(rand.NewSource(99)))
	bad := config.Config{Rows: 2, Columns: 6, Mode: config.ModeNormal, DurationSeconds: 60}
	if err := e.Setup(bad); err == nil {
		t.Fatal("expected Setup to reject out-of-range rows")
	}
}

func TestEngineSetupThenSnapshot(t *testing.T) {
	e := NewEngineWithRNG(rand.New(rand.NewSource(99)))
	cfg := config.Config{Rows: 8, Columns: 8, Mode: config.ModeNormal, DurationSeconds: 30}
	if err := e.Setup(cfg); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	snap := e.Snapshot()
	if snap.Rows != 8 || snap.Cols != 8 {
		t.Fatalf("expected 8x8 snapshot, got %dx%d", snap.Rows, snap.Cols)
	}
	if snap.TimerState != TimerIdle.String() {
		t.Fatalf("expected idle timer before StartPlaying, got %s", snap.TimerState)
	}
}

// TestEngineValidSwapTriggersMatchAndScoring exercises the core scenario:
// a swap producing a three-in-a-row fires onMatch with a 3-length match at
// combo 1, at least three onPop events, and onProcessComplete.
func TestEngineValidSwapTriggersMatchAndScoring(t *testing.T) {
	e := NewEngineWithRNG(rand.New(rand.NewSource(99)))
	cfg := config.Config{Rows: 6, Columns: 6, Mode: config.ModeNormal, DurationSeconds: 60, FreeMoves: true}
	if err := e.Setup(cfg); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	var gotMatch bool
	var matchLen, matchCombo int
	var popCount int
	done := make(chan struct{}, 1)

	e.OnMatch(func(matches [][]grid.Position, combo int) {
		if len(matches) > 0 && !gotMatch {
			gotMatch = true
			matchLen = len(matches[0])
			matchCombo = combo
		}
	})
	e.OnPop(func(t grid.PieceType, p *Piece, combo int, isSpecial, causedBySpecial bool) {
		popCount++
	})
	e.OnProcessComplete(func() {
		select {
		case done <- struct{}{}:
		default:
		}
	})

	e.playing = true // bypass StartPlaying's ticker; we drive the action directly

	// Force a guaranteed three-in-a-row: two cells of type 1 already in a
	// row, plus a third of type 1 one row above the gap, so swapping it
	// down completes the run.
	e.board.SpawnPiece(grid.Position{Row: 3, Col: 0}, 1)
	e.board.SpawnPiece(grid.Position{Row: 3, Col: 1}, 1)
	e.board.SpawnPiece(grid.Position{Row: 3, Col: 2}, 2)
	e.board.SpawnPiece(grid.Position{Row: 2, Col: 2}, 1)

	e.ActionMove(grid.Position{Row: 3, Col: 2}, grid.Position{Row: 2, Col: 2})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cascade to complete")
	}

	if !gotMatch {
		t.Fatal("expected onMatch to fire")
	}
	if matchLen != 3 {
		t.Fatalf("expected a 3-length match, got %d", matchLen)
	}
	if matchCombo != 1 {
		t.Fatalf("expected combo 1 on the first round, got %d", matchCombo)
	}
	if popCount < 3 {
		t.Fatalf("expected at least 3 pops, got %d", popCount)
	}
}

func TestEngineFinalizeWaitsForBothTimerAndCascade(t *testing.T) {
	e := NewEngineWithRNG(rand.New(rand.NewSource(99)))
	cfg := config.Config{Rows: 6, Columns: 6, Mode: config.ModeNormal, DurationSeconds: 1, FreeMoves: true}
	if err := e.Setup(cfg); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	e.playing = true
	e.timer.Start()

	// Simulate time running out while a cascade is still mid-flight: the
	// timer fires before the cascade's completion callback does.
	e.onTimesUp()

	e.mu.Lock()
	finalizedEarly := e.finalized
	e.mu.Unlock()
	if finalizedEarly {
		t.Fatal("must not finalize while a cascade is still running")
	}

	e.onProcessComplete()

	e.mu.Lock()
	finalized := e.finalized
	e.mu.Unlock()
	if !finalized {
		t.Fatal("expected finalize once both timer expired and cascade completed")
	}
}
