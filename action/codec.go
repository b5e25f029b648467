package action

import (
	"github.com/pkg/errors"

	"trictrac/game"
)

// Result is the outcome of applying an action.
type Result struct {
	// Success is false when the action was rejected, by the mask or by the engine.
	Success bool
	// Rejected is true when the action never reached the engine.
	Rejected bool
	// Points is the value marked by a successful mark action.
	Points int
}

// Allower decides whether an action may reach the engine. Mask and Legal implement it.
type Allower interface {
	Allows(a Action) bool
}

// Apply validates a against allowed and executes it. A rejected or refused action is a
// normal outcome; only engine failures are returned as errors. Nothing is retried.
func Apply(eng game.Engine, allowed Allower, a Action) (Result, error) {
	if !allowed.Allows(a) {
		return Result{Rejected: true}, nil
	}

	switch a.Type {
	case MoveType:
		ok, err := eng.PlayMove(a.Quad())
		if err != nil {
			return Result{}, errors.Wrapf(err, "play move %s", a.Quad())
		}
		return Result{Success: ok}, nil

	case MarkType:
		points := eng.CalculatePoints()
		ok, err := eng.MarkPoints(points)
		if err != nil {
			return Result{}, errors.Wrapf(err, "mark %d points", points)
		}
		if !ok {
			return Result{}, nil
		}
		return Result{Success: true, Points: points}, nil

	case GoType:
		ok, err := eng.ChooseGo()
		if err != nil {
			return Result{}, errors.Wrap(err, "choose go")
		}
		return Result{Success: ok}, nil

	default:
		return Result{Rejected: true}, nil
	}
}
