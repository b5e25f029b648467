package game

import (
	"fmt"

	"trictrac/meta"
)

// CheckerMove moves one checker from a field to another. Position 0 means unused.
type CheckerMove struct {
	From int
	To   int
}

// MoveQuad is the pair of die-driven checker moves of one turn.
type MoveQuad struct {
	First  CheckerMove
	Second CheckerMove
}

// NewMoveQuad builds ((from1,to1),(from2,to2)).
func NewMoveQuad(from1, to1, from2, to2 int) MoveQuad {
	return MoveQuad{
		First:  CheckerMove{From: from1, To: to1},
		Second: CheckerMove{From: from2, To: to2},
	}
}

// Positions returns from1, to1, from2, to2.
func (q MoveQuad) Positions() [4]int {
	return [4]int{q.First.From, q.First.To, q.Second.From, q.Second.To}
}

// InRange reports whether every position lies in [0, MaxPosition].
func (q MoveQuad) InRange() bool {
	for _, p := range q.Positions() {
		if p < 0 || p > meta.MaxPosition {
			return false
		}
	}
	return true
}

func (q MoveQuad) String() string {
	return fmt.Sprintf("((%d,%d),(%d,%d))", q.First.From, q.First.To, q.Second.From, q.Second.To)
}
