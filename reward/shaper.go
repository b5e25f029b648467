// Package reward shapes the scalar reward of an agent-visible step from sparse
// game outcomes and dense per-step signals.
package reward

import "trictrac/game"

// Weights are the magnitudes of the reward terms.
type Weights struct {
	ActionSuccess float64 // per successful move or go
	PointMarked   float64 // per point of a successful mark
	InvalidAction float64
	HoleMargin    float64 // per hole of lead
	Win           float64
	Loss          float64
	Repetition    float64
	TruncateLead  float64
	TruncateTrail float64
}

func DefaultWeights() Weights {
	return Weights{
		ActionSuccess: 0.1,
		PointMarked:   0.1,
		InvalidAction: -2.0,
		HoleMargin:    0.5,
		Win:           10.0,
		Loss:          -5.0,
		Repetition:    -0.2,
		TruncateLead:  5.0,
		TruncateTrail: -2.0,
	}
}

// ActionKind is the kind of the agent's action, if it acted this step.
type ActionKind int

const (
	NoAction ActionKind = iota
	MoveAction
	MarkAction
	GoAction
)

// Outcome is everything a step contributes to its reward.
type Outcome struct {
	Action        ActionKind
	Success       bool
	PointsMarked  int
	AgentHoles    int
	OpponentHoles int
	Terminated    bool
	Winner        game.PlayerID
	Repeated      bool
	Truncated     bool
}

// Breakdown lists each term and their sum.
type Breakdown struct {
	Action     float64
	Margin     float64
	Terminal   float64
	Repetition float64
	Truncation float64
	Total      float64
}

type Shaper struct {
	weights Weights
}

func NewShaper(w Weights) Shaper {
	return Shaper{weights: w}
}

// Weights returns the shaper's weights.
func (s Shaper) Weights() Weights {
	return s.weights
}

// Shape computes the reward of a step. Terms are summed in a fixed order: action,
// margin, terminal, repetition, truncation. Truncation only counts when the step did
// not terminate.
func (s Shaper) Shape(o Outcome) Breakdown {
	w := s.weights
	var b Breakdown

	switch {
	case o.Action == NoAction:
	case !o.Success:
		b.Action = w.InvalidAction
	case o.Action == MarkAction:
		b.Action = w.PointMarked * float64(o.PointsMarked)
	default:
		b.Action = w.ActionSuccess
	}
	b.Total += b.Action

	b.Margin = w.HoleMargin * float64(o.AgentHoles-o.OpponentHoles)
	b.Total += b.Margin

	if o.Terminated {
		if o.Winner == game.Agent {
			b.Terminal = w.Win
		} else {
			b.Terminal = w.Loss
		}
		b.Total += b.Terminal
	}

	if o.Repeated {
		b.Repetition = w.Repetition
		b.Total += b.Repetition
	}

	if o.Truncated && !o.Terminated {
		switch {
		case o.AgentHoles > o.OpponentHoles:
			b.Truncation = w.TruncateLead
		case o.AgentHoles < o.OpponentHoles:
			b.Truncation = w.TruncateTrail
		}
		b.Total += b.Truncation
	}

	return b
}
