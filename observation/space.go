package observation

import (
	"math"

	"trictrac/meta"
)

// Bound is an inclusive integer range.
type Bound struct {
	Low  int
	High int
}

func (b Bound) contains(v int) bool {
	return v >= b.Low && v <= b.High
}

// Space describes the valid values of each observation field.
type Space struct {
	Board        Bound
	ActivePlayer Bound
	Dice         Bound
	Score        Bound
	TurnStage    Bound
}

// DefaultSpace returns the observation space of the adapter.
func DefaultSpace() Space {
	return Space{
		Board:        Bound{Low: math.MinInt8, High: math.MaxInt8},
		ActivePlayer: Bound{Low: 0, High: 2},
		Dice:         Bound{Low: 0, High: meta.MaxDie},
		Score:        Bound{Low: 0, High: meta.MaxScore},
		TurnStage:    Bound{Low: 0, High: 5},
	}
}

// Contains reports whether every field of o lies in the space.
func (s Space) Contains(o Observation) bool {
	for _, c := range o.Board {
		if !s.Board.contains(int(c)) {
			return false
		}
	}
	for _, d := range o.Dice {
		if !s.Dice.contains(d) {
			return false
		}
	}
	for _, v := range []int{o.WhitePoints, o.WhiteHoles, o.BlackPoints, o.BlackHoles} {
		if !s.Score.contains(v) {
			return false
		}
	}
	return s.ActivePlayer.contains(o.ActivePlayer) && s.TurnStage.contains(o.TurnStage)
}
