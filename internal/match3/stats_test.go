package match3

import (
	"testing"
	"time"

	"connectgame/internal/grid"
)

func TestRegisterMatchScoring(t *testing.T) {
	s := NewStats()
	matches := [][]grid.Position{
		{{Row: 4, Col: 0}, {Row: 4, Col: 1}, {Row: 4, Col: 2}},
	}
	s.RegisterMatch(matches, 1)

	// len(3) + |matches|(1) * combo(1) = 4
	if s.Score != 4 {
		t.Fatalf("expected score 4, got %d", s.Score)
	}
	if s.Matches != 1 {
		t.Fatalf("expected matches counter 1, got %d", s.Matches)
	}
}

func TestRegisterMatchMultipleMatchesSameRound(t *testing.T) {
	s := NewStats()
	matches := [][]grid.Position{
		{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}},
		{{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 1, Col: 3}},
	}
	s.RegisterMatch(matches, 2)

	// match1: 3 + 2*2 = 7; match2: 4 + 2*2 = 8; total 15
	if s.Score != 15 {
		t.Fatalf("expected score 15, got %d", s.Score)
	}
	if s.Matches != 2 {
		t.Fatalf("expected matches counter 2, got %d", s.Matches)
	}
}

func TestRegisterPopScoring(t *testing.T) {
	s := NewStats()
	s.RegisterPop(false, false)
	s.RegisterPop(true, false)
	s.RegisterPop(true, true)

	if s.Score != 1+3+3 {
		t.Fatalf("expected score 7, got %d", s.Score)
	}
	if s.Pops != 3 {
		t.Fatalf("expected pops counter 3, got %d", s.Pops)
	}
	if s.Specials != 1 {
		t.Fatalf("expected specials counter 1, got %d", s.Specials)
	}
}

func TestCalculateGradeThresholds(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		elapsed time.Duration
		want    Grade
	}{
		{"zero elapsed", 100, 0, GradeZero},
		{"below grade one", 1, 10 * time.Second, GradeZero},
		{"grade one", 10, 10 * time.Second, GradeOne},
		{"grade two", 100, 10 * time.Second, GradeTwo},
		{"grade three", 200, 10 * time.Second, GradeThree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateGrade(tt.score, tt.elapsed); got != tt.want {
				t.Fatalf("CalculateGrade(%d, %v) = %v, want %v", tt.score, tt.elapsed, got, tt.want)
			}
		})
	}
}
