// Package opponent drives the non-agent player through the engine's turn protocol
// until control returns to the agent or the game ends.
package opponent

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"trictrac/game"
	"trictrac/meta"
	"trictrac/utils"
)

// ErrStalled is returned when the opponent's turn does not end within the iteration cap.
var ErrStalled = errors.New("opponent turn did not terminate")

// Report counts what the automaton dispatched during one run.
type Report struct {
	Iterations int
	Rolls      int
	Marks      int
	Goes       int
	Moves      int
	// NoMoves counts move stages without any legal move.
	NoMoves int
	// Refused counts engine calls that returned false.
	Refused int
}

// Actions is the number of engine actions dispatched.
func (r Report) Actions() int {
	return r.Rolls + r.Marks + r.Goes + r.Moves
}

func (r *Report) add(o Report) {
	r.Iterations += o.Iterations
	r.Rolls += o.Rolls
	r.Marks += o.Marks
	r.Goes += o.Goes
	r.Moves += o.Moves
	r.NoMoves += o.NoMoves
	r.Refused += o.Refused
}

type Option func(a *Automaton)

// WithMaxIterations caps the dispatches of a single Run.
func WithMaxIterations(n int) Option {
	return func(a *Automaton) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Automaton) {
		a.logger = logger
	}
}

// Automaton is a turn-stage driven state machine for the opponent seat.
type Automaton struct {
	strategy      Strategy
	maxIterations int
	logger        zerolog.Logger
}

func New(strategy Strategy, options ...Option) *Automaton {
	if strategy == nil {
		strategy = Default{}
	}
	a := &Automaton{
		strategy:      strategy,
		maxIterations: meta.MaxOpponentIterations,
		logger:        log.With().Str("component", "opponent").Logger(),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Strategy returns the strategy making the automaton's choices.
func (a *Automaton) Strategy() Strategy {
	return a.strategy
}

// Run dispatches opponent actions while it is the opponent's turn and the game is not
// over. Engine failures and a breached iteration cap are returned as errors.
func (a *Automaton) Run(eng game.Engine) (Report, error) {
	var report Report
	for eng.ActivePlayer() == game.Opponent && !eng.Done() {
		if report.Iterations >= a.maxIterations {
			a.logger.Error().Int("iterations", report.Iterations).Str("stage", eng.TurnStage()).Msg("opponent stalled")
			return report, errors.Wrapf(ErrStalled, "stage %s after %d iterations", eng.TurnStage(), report.Iterations)
		}
		report.Iterations++

		step, err := a.dispatch(eng, game.ParseTurnStage(eng.TurnStage()))
		report.add(step)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (a *Automaton) dispatch(eng game.Engine, stage game.TurnStage) (Report, error) {
	var r Report
	switch stage {
	case game.RollDice, game.RollWaiting:
		a.logger.Debug().Str("stage", stage.String()).Msg("opponent rolls")
		if err := eng.RollDice(); err != nil {
			return r, errors.Wrap(err, "opponent roll dice")
		}
		r.Rolls++

	case game.MarkPoints, game.MarkAdvPoints:
		points := eng.CalculatePoints()
		a.logger.Debug().Str("stage", stage.String()).Int("points", points).Msg("opponent marks")
		ok, err := eng.MarkPoints(points)
		if err != nil {
			return r, errors.Wrap(err, "opponent mark points")
		}
		r.Marks++
		if !ok {
			r.Refused++
		}

	case game.HoldOrGoChoice:
		if a.strategy.ChooseGo() {
			a.logger.Debug().Msg("opponent goes on")
			ok, err := eng.ChooseGo()
			if err != nil {
				return r, errors.Wrap(err, "opponent choose go")
			}
			r.Goes++
			if !ok {
				r.Refused++
			}
			return r, nil
		}
		return a.move(eng)

	case game.Move:
		return a.move(eng)
	}
	return r, nil
}

func (a *Automaton) move(eng game.Engine) (Report, error) {
	var r Report
	moves := eng.AvailableMoves()
	if len(moves) == 0 {
		a.logger.Debug().Msg("opponent has no legal move")
		r.NoMoves++
		return r, nil
	}
	q := a.strategy.ChooseMove(moves)
	if !utils.Contains(moves, q) {
		return r, errors.Errorf("opponent strategy chose %s outside the legal moves", q)
	}
	a.logger.Debug().Stringer("move", q).Msg("opponent moves")
	ok, err := eng.PlayMove(q)
	if err != nil {
		return r, errors.Wrap(err, "opponent play move")
	}
	r.Moves++
	if !ok {
		r.Refused++
	}
	return r, nil
}
