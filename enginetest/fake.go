// Package enginetest provides game.Engine implementations for tests: a scriptable
// fake that records every call, and a small deterministic race game.
package enginetest

import (
	"fmt"

	"trictrac/game"
)

// Engine is a scriptable game.Engine. Queries return the exported fields; mutations
// record a call, return Err when it is set, and otherwise defer to the matching hook
// or to the configured result.
type Engine struct {
	Active   game.PlayerID
	Stage    string
	Moves    []game.MoveQuad
	Finished bool
	WinnerID game.PlayerID
	Holes    map[game.PlayerID]int
	Points   int

	// State and ID override the snapshot and state id derived from the fields above.
	State game.StateDict
	ID    string

	PlayResult bool
	MarkResult bool
	GoResult   bool
	Err        error

	OnReset      func(e *Engine)
	OnPlayMove   func(e *Engine, q game.MoveQuad) bool
	OnRollDice   func(e *Engine)
	OnMarkPoints func(e *Engine, points int) bool
	OnChooseGo   func(e *Engine) bool

	Calls  []string
	Seeded []uint64
}

// New returns a fake at the start of the agent's turn that accepts every action.
func New() *Engine {
	return &Engine{
		Active:     game.Agent,
		Stage:      game.RollDice.String(),
		Holes:      map[game.PlayerID]int{},
		PlayResult: true,
		MarkResult: true,
		GoResult:   true,
	}
}

func (e *Engine) record(format string, args ...any) {
	e.Calls = append(e.Calls, fmt.Sprintf(format, args...))
}

// CallCount returns how many recorded calls start with name.
func (e *Engine) CallCount(name string) int {
	n := 0
	for _, c := range e.Calls {
		if len(c) >= len(name) && c[:len(name)] == name {
			n++
		}
	}
	return n
}

func (e *Engine) ActivePlayer() game.PlayerID { return e.Active }
func (e *Engine) TurnStage() string           { return e.Stage }
func (e *Engine) Done() bool                  { return e.Finished }
func (e *Engine) Winner() game.PlayerID       { return e.WinnerID }
func (e *Engine) Score(p game.PlayerID) int   { return e.Holes[p] }

func (e *Engine) AvailableMoves() []game.MoveQuad {
	e.record("AvailableMoves")
	return e.Moves
}

func (e *Engine) CalculatePoints() int {
	e.record("CalculatePoints")
	return e.Points
}

func (e *Engine) PlayMove(q game.MoveQuad) (bool, error) {
	e.record("PlayMove %s", q)
	if e.Err != nil {
		return false, e.Err
	}
	if e.OnPlayMove != nil {
		return e.OnPlayMove(e, q), nil
	}
	return e.PlayResult, nil
}

func (e *Engine) RollDice() error {
	e.record("RollDice")
	if e.Err != nil {
		return e.Err
	}
	if e.OnRollDice != nil {
		e.OnRollDice(e)
	}
	return nil
}

func (e *Engine) MarkPoints(points int) (bool, error) {
	e.record("MarkPoints %d", points)
	if e.Err != nil {
		return false, e.Err
	}
	if e.OnMarkPoints != nil {
		return e.OnMarkPoints(e, points), nil
	}
	return e.MarkResult, nil
}

func (e *Engine) ChooseGo() (bool, error) {
	e.record("ChooseGo")
	if e.Err != nil {
		return false, e.Err
	}
	if e.OnChooseGo != nil {
		return e.OnChooseGo(e), nil
	}
	return e.GoResult, nil
}

func (e *Engine) Reset() error {
	e.record("Reset")
	if e.Err != nil {
		return e.Err
	}
	if e.OnReset != nil {
		e.OnReset(e)
	}
	return nil
}

func (e *Engine) Seed(seed uint64) {
	e.Seeded = append(e.Seeded, seed)
}

func (e *Engine) StateDict() game.StateDict {
	if e.State != nil {
		return e.State
	}
	return game.StateDict{
		game.KeyActivePlayer: int(e.Active),
		game.KeyTurnStage:    e.Stage,
		game.KeyWhiteHoles:   e.Holes[game.Agent],
		game.KeyBlackHoles:   e.Holes[game.Opponent],
	}
}

func (e *Engine) StateID() string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("%d|%s|%d|%d|%t", e.Active, e.Stage, e.Holes[game.Agent], e.Holes[game.Opponent], e.Finished)
}
