package match3

import (
	"time"

	"connectgame/internal/grid"
)

// Grade is the session's end-of-round performance bucket, derived from
// score per elapsed second.
type Grade int

const (
	GradeZero Grade = iota
	GradeOne
	GradeTwo
	GradeThree
)

func (g Grade) String() string {
	switch g {
	case GradeZero:
		return "zero"
	case GradeOne:
		return "one"
	case GradeTwo:
		return "two"
	case GradeThree:
		return "three"
	default:
		return "unknown"
	}
}

// Stats accumulates the running score and event counters for a session.
type Stats struct {
	Score    int
	Matches  int
	Pops     int
	Specials int
}

// NewStats returns a zeroed stats tracker.
func NewStats() *Stats {
	return &Stats{}
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	s.Score = 0
	s.Matches = 0
	s.Pops = 0
	s.Specials = 0
}

// RegisterMatch credits every match found in a cascade round: each match
// contributes its own length plus the total match count times combo.
func (s *Stats) RegisterMatch(matches [][]grid.Position, combo int) {
	n := len(matches)
	for _, m := range matches {
		s.Score += len(m) + n*combo
		s.Matches++
	}
}

// RegisterPop credits a single piece pop. Pops caused by another special's
// trigger are worth more than direct pops.
func (s *Stats) RegisterPop(causedBySpecial, isSpecial bool) {
	if causedBySpecial {
		s.Score += 3
	} else {
		s.Score++
	}
	s.Pops++
	if isSpecial {
		s.Specials++
	}
}

// pointsPerSecondGrades are the rate-of-score thresholds separating grades,
// strictly greater-than on the lower bound of each tier.
var pointsPerSecondGrades = []struct {
	min   float64
	grade Grade
}{
	{16, GradeThree},
	{8, GradeTwo},
	{0.8, GradeOne},
}

// CalculateGrade buckets score by points earned per elapsed second.
func CalculateGrade(score int, elapsed time.Duration) Grade {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return GradeZero
	}
	rate := float64(score) / secs
	for _, tier := range pointsPerSecondGrades {
		if rate > tier.min {
			return tier.grade
		}
	}
	return GradeZero
}

// Snapshot is the read-only view of stats exposed to the presentation layer.
type Snapshot struct {
	Score    int   `json:"score"`
	Matches  int   `json:"matches"`
	Pops     int   `json:"pops"`
	Specials int   `json:"specials"`
	Grade    Grade `json:"grade"`
}

// Snapshot computes the current grade against elapsed and returns a
// read-only copy of the counters.
func (s *Stats) Snapshot(elapsed time.Duration) Snapshot {
	return Snapshot{
		Score:    s.Score,
		Matches:  s.Matches,
		Pops:     s.Pops,
		Specials: s.Specials,
		Grade:    CalculateGrade(s.Score, elapsed),
	}
}
