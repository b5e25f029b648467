// Package action translates between the agent's fixed-shape discrete action and
// engine calls, and computes which actions are currently legal.
package action

import (
	"fmt"

	"trictrac/game"
	"trictrac/meta"
	"trictrac/utils"
)

// Type is the kind of an action.
type Type int

const (
	MoveType Type = iota
	MarkType
	GoType
)

// NumTypes is the number of action types.
const NumTypes = 3

func (t Type) String() string {
	switch t {
	case MoveType:
		return "move"
	case MarkType:
		return "mark"
	case GoType:
		return "go"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Action is the tagged action variant. Move fields are only meaningful for MoveType.
type Action struct {
	Type  Type
	From1 int
	To1   int
	From2 int
	To2   int
}

// Vector is the external encoding [type, from1, to1, from2, to2].
type Vector [5]int

// Move builds a move action from a quad.
func Move(q game.MoveQuad) Action {
	return Action{Type: MoveType, From1: q.First.From, To1: q.First.To, From2: q.Second.From, To2: q.Second.To}
}

// Mark builds a mark action; the points are computed by the engine.
func Mark() Action { return Action{Type: MarkType} }

// Go builds a continue-turn action.
func Go() Action { return Action{Type: GoType} }

// Decode converts an external action vector. Move fields of non-move types are zeroed;
// values are not range checked here, see Mask.Allows.
func Decode(v Vector) Action {
	a := Action{Type: Type(v[0])}
	if a.Type == MoveType {
		a.From1, a.To1, a.From2, a.To2 = v[1], v[2], v[3], v[4]
	}
	return a
}

// Vector encodes the action.
func (a Action) Vector() Vector {
	if a.Type != MoveType {
		return Vector{int(a.Type), 0, 0, 0, 0}
	}
	return Vector{int(a.Type), a.From1, a.To1, a.From2, a.To2}
}

// Quad returns the checker moves of a move action.
func (a Action) Quad() game.MoveQuad {
	return game.NewMoveQuad(a.From1, a.To1, a.From2, a.To2)
}

func (a Action) String() string {
	if a.Type == MoveType {
		return fmt.Sprintf("move%s", a.Quad())
	}
	return a.Type.String()
}

// Bound is an inclusive integer range of one action vector component.
type Bound struct {
	Low  int
	High int
}

// Space returns the bounds of each action vector component.
func Space() [5]Bound {
	pos := Bound{Low: 0, High: meta.MaxPosition}
	return [5]Bound{{Low: 0, High: NumTypes - 1}, pos, pos, pos, pos}
}

// InSpace reports whether every component of v lies in its bound.
func InSpace(v Vector) bool {
	for i, b := range Space() {
		if utils.Clamp(v[i], b.Low, b.High) != v[i] {
			return false
		}
	}
	return true
}
