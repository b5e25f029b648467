package action

import (
	"trictrac/game"
	"trictrac/meta"
	"trictrac/utils"
)

const side = meta.MaxPosition + 1

// MoveMaskSize is the number of entries of the move sub-mask.
const MoveMaskSize = side * side * side * side

// Mask is the legality mask of the current decision. Moves is the row-major
// [from1][to1][from2][to2] characteristic function of the engine's legal moves.
type Mask struct {
	Types [NumTypes]bool
	Moves []bool

	legal []game.MoveQuad
}

// EmptyMask returns a mask with every entry false.
func EmptyMask() Mask {
	return Mask{Moves: make([]bool, MoveMaskSize)}
}

// MoveIndex returns the flat index of ((a,b),(c,d)) in Moves, or -1 when any position
// lies outside [0, MaxPosition].
func MoveIndex(q game.MoveQuad) int {
	if !q.InRange() {
		return -1
	}
	p := q.Positions()
	return ((p[0]*side+p[1])*side+p[2])*side + p[3]
}

// Legal is the sparse form of the mask: the enabled types and the engine's legal
// moves. Checking an action against it costs one scan of the legal moves.
type Legal struct {
	Types [NumTypes]bool
	Moves []game.MoveQuad
}

// ComputeLegal reads the enabled types and the legal moves from the engine. When it is
// not the agent's turn nothing is legal.
func ComputeLegal(eng game.Engine) Legal {
	var l Legal
	if eng.ActivePlayer() != game.Agent || eng.Done() {
		return l
	}

	switch game.ParseTurnStage(eng.TurnStage()) {
	case game.Move:
		l.Types[MoveType] = true
	case game.HoldOrGoChoice:
		l.Types[MoveType] = true
		l.Types[GoType] = true
	case game.MarkPoints, game.MarkAdvPoints:
		l.Types[MarkType] = true
	default:
		// rolling is driven by the adapter, never by the agent
	}

	l.Moves = eng.AvailableMoves()
	return l
}

// Allows reports whether the action is legal, like Mask.Allows. Quads that cannot be
// indexed in a mask are never legal.
func (l Legal) Allows(a Action) bool {
	if a.Type < 0 || int(a.Type) >= NumTypes || !l.Types[a.Type] {
		return false
	}
	if a.Type == MoveType {
		q := a.Quad()
		return q.InRange() && utils.Contains(l.Moves, q)
	}
	return true
}

// Actions enumerates every legal action, moves first in engine order.
func (l Legal) Actions() []Action {
	var actions []Action
	if l.Types[MoveType] {
		for _, q := range l.Moves {
			if q.InRange() {
				actions = append(actions, Move(q))
			}
		}
	}
	if l.Types[MarkType] {
		actions = append(actions, Mark())
	}
	if l.Types[GoType] {
		actions = append(actions, Go())
	}
	return actions
}

// Mask expands l into the dense mask.
func (l Legal) Mask() Mask {
	m := EmptyMask()
	m.Types = l.Types
	m.legal = l.Moves
	for _, q := range l.Moves {
		if idx := MoveIndex(q); idx >= 0 {
			m.Moves[idx] = true
		}
	}
	return m
}

// ComputeMask derives the dense mask from the engine. When it is not the agent's turn
// every entry is false. The move sub-mask is filled only from the engine's legal moves.
func ComputeMask(eng game.Engine) Mask {
	return ComputeLegal(eng).Mask()
}

// Move reports whether ((a,b),(c,d)) is a legal move.
func (m Mask) Move(a, b, c, d int) bool {
	return m.AllowsMove(game.NewMoveQuad(a, b, c, d))
}

// AllowsMove reports whether q is a legal move.
func (m Mask) AllowsMove(q game.MoveQuad) bool {
	idx := MoveIndex(q)
	return idx >= 0 && idx < len(m.Moves) && m.Moves[idx]
}

// Allows reports whether the action is legal: its type is enabled and, for moves,
// its quad is legal.
func (m Mask) Allows(a Action) bool {
	if a.Type < 0 || int(a.Type) >= NumTypes || !m.Types[a.Type] {
		return false
	}
	if a.Type == MoveType {
		return m.AllowsMove(a.Quad())
	}
	return true
}

// LegalMoves returns the legal moves the mask was built from.
func (m Mask) LegalMoves() []game.MoveQuad {
	return m.legal
}

// Actions enumerates every legal action, moves first in engine order.
func (m Mask) Actions() []Action {
	return Legal{Types: m.Types, Moves: m.legal}.Actions()
}

// Any reports whether at least one action type is enabled.
func (m Mask) Any() bool {
	for _, t := range m.Types {
		if t {
			return true
		}
	}
	return false
}
