package match3

import "connectgame/internal/grid"

// EventHandlers holds the callbacks the presentation layer registers to
// observe engine state changes as they are committed. Every field may be
// nil; callers should check before invoking. A single EventHandlers value
// is shared by pointer across Board, Process and Actions so that setting
// a handler on the Engine takes effect immediately for all of them.
type EventHandlers struct {
	// OnMove fires once per actionMove call that reaches the validity
	// check, regardless of outcome. Calls rejected earlier (not playing,
	// cascade running, missing or locked piece) fire nothing.
	OnMove func(from, to grid.Position, valid bool)

	// OnMatch fires once per cascade round that finds at least one match,
	// with the round number as combo.
	OnMatch func(matches [][]grid.Position, combo int)

	// OnPop fires once per piece removed from the board, from any cause:
	// a regular match, a special's trigger radius, or a direct tap.
	OnPop func(t grid.PieceType, piece *Piece, combo int, isSpecial, causedBySpecial bool)

	OnProcessStart    func()
	OnProcessComplete func()
	OnTimesUp         func()

	// AnimateSwap, AnimateFall, AnimatePop and AnimateSpawn are the
	// presentation layer's animation hooks. Each call is the cascade's
	// suspension point: the engine invokes it and treats the call as
	// "awaited" once it returns, so a real presentation layer blocks
	// inside its own implementation until the visual step is finished.
	// Nil means instant (no animation wired), which keeps the engine
	// usable headless in tests.
	AnimateSwap  func(piece *Piece, targetRow, targetCol int)
	AnimateFall  func(piece *Piece, targetRow, targetCol int)
	AnimatePop   func(piece *Piece)
	AnimateSpawn func(piece *Piece)
}

// EventKind names the wire-level event types the log and any subscriber
// channel use to tag a logged event's payload.
type EventKind string

const (
	EventMove            EventKind = "move"
	EventMatch           EventKind = "match"
	EventPop             EventKind = "pop"
	EventProcessStart    EventKind = "process_start"
	EventProcessComplete EventKind = "process_complete"
	EventTimesUp         EventKind = "times_up"
)

// Event is a single logged occurrence, stamped with the round it happened
// in (0 outside of an active cascade).
type Event struct {
	Kind    EventKind      `json:"kind"`
	Round   int            `json:"round,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}
