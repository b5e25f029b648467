// Package env exposes a Trictrac engine as a single-agent environment: the agent plays
// white, an automaton plays black, and every step returns an observation, a shaped
// reward and the termination flags.
package env

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"trictrac/action"
	"trictrac/config"
	"trictrac/game"
	"trictrac/meta"
	"trictrac/observation"
	"trictrac/opponent"
	"trictrac/reward"
)

var (
	// ErrEpisodeOver is returned when stepping an episode that already ended.
	ErrEpisodeOver = errors.New("episode is over, call Reset")
	// ErrNotReset is returned when stepping before the first Reset.
	ErrNotReset = errors.New("environment was not reset")
)

type Option func(e *Env)

// WithConfig applies the step limit, opponent strategy, seed and log level of cfg.
func WithConfig(cfg config.Config) Option {
	return func(e *Env) {
		e.maxSteps = cfg.MaxSteps
		e.maxOpponentIterations = cfg.OpponentMaxIterations
		e.strategyName = cfg.OpponentStrategy
		e.seed = cfg.Seed
		e.logger = cfg.Logger("env")
		e.opponentLogger = cfg.Logger("opponent")
	}
}

// WithStrategy overrides the strategy named by the configuration.
func WithStrategy(strategy opponent.Strategy) Option {
	return func(e *Env) {
		e.strategy = strategy
	}
}

func WithMaxSteps(n int) Option {
	return func(e *Env) {
		e.maxSteps = n
	}
}

func WithMaxOpponentIterations(n int) Option {
	return func(e *Env) {
		e.maxOpponentIterations = n
	}
}

func WithWeights(w reward.Weights) Option {
	return func(e *Env) {
		e.shaper = reward.NewShaper(w)
	}
}

// WithLogger logs through logger, for the environment and its opponent alike.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Env) {
		e.logger = logger
		e.opponentLogger = logger
	}
}

// WithMetrics records per-episode metrics, see Env.Metrics.
func WithMetrics() Option {
	return func(e *Env) {
		e.metrics = NewCollector()
	}
}

// Env owns its engine exclusively and is not safe for concurrent use.
type Env struct {
	engine                game.Engine
	automaton             *opponent.Automaton
	strategy              opponent.Strategy
	strategyName          string
	shaper                reward.Shaper
	history               *History
	metrics               Collector
	logger                zerolog.Logger
	opponentLogger        zerolog.Logger
	maxSteps              int
	maxOpponentIterations int
	seed                  uint64

	episodeID string
	steps     int
	started   bool
	over      bool
}

func New(engine game.Engine, options ...Option) (*Env, error) {
	if engine == nil {
		return nil, errors.New("nil engine")
	}
	e := &Env{
		engine:                engine,
		strategyName:          opponent.RandomName,
		shaper:                reward.NewShaper(reward.DefaultWeights()),
		history:               NewHistory(meta.HistorySize),
		metrics:               NewDummyCollector(),
		logger:                log.With().Str("component", "env").Logger(),
		opponentLogger:        log.With().Str("component", "opponent").Logger(),
		maxSteps:              meta.DefaultMaxSteps,
		maxOpponentIterations: meta.MaxOpponentIterations,
	}
	for _, option := range options {
		option(e)
	}
	if e.maxSteps <= 0 {
		return nil, errors.Errorf("max steps must be positive, got %d", e.maxSteps)
	}
	if e.strategy == nil {
		strategy, err := opponent.ByName(e.strategyName, e.seed)
		if err != nil {
			return nil, errors.Wrap(err, "opponent strategy")
		}
		e.strategy = strategy
	}
	e.automaton = opponent.New(e.strategy,
		opponent.WithMaxIterations(e.maxOpponentIterations),
		opponent.WithLogger(e.opponentLogger),
	)
	return e, nil
}

// Reset starts a new episode without reseeding.
func (e *Env) Reset() (observation.Observation, Info, error) {
	if err := e.engine.Reset(); err != nil {
		e.over = true
		return observation.Observation{}, Info{}, errors.Wrap(err, "reset engine")
	}
	e.episodeID = uuid.NewString()
	e.steps = 0
	e.history.Clear()
	e.started = true
	e.over = false
	e.metrics.Start(e.episodeID)

	info := Info{EpisodeID: e.episodeID}
	// the opponent may be seated first
	if e.engine.ActivePlayer() == game.Opponent && !e.engine.Done() {
		report, err := e.automaton.Run(e.engine)
		info.OpponentActions = report.Actions()
		if err != nil {
			e.over = true
			return observation.Observation{}, info, errors.Wrap(err, "opening opponent turn")
		}
	}
	info.AgentHoles = e.engine.Score(game.Agent)
	info.OpponentHoles = e.engine.Score(game.Opponent)

	e.logger.Info().Str("episode", e.episodeID).Msg("episode started")
	return observation.Encode(e.engine.StateDict()), info, nil
}

// ResetWithSeed seeds the opponent strategy, and the engine when it supports it,
// before resetting.
func (e *Env) ResetWithSeed(seed uint64) (observation.Observation, Info, error) {
	e.seed = seed
	if s, ok := e.strategy.(opponent.Seedable); ok {
		s.Seed(seed)
	}
	if s, ok := e.engine.(game.Seeder); ok {
		s.Seed(seed)
	}
	return e.Reset()
}

// Step applies the agent's action, lets the opponent play its turn and reports the
// resulting transition. When the agent has to roll, the roll is made on its behalf and
// the action is ignored.
func (e *Env) Step(a action.Action) (Transition, error) {
	if !e.started {
		return Transition{}, ErrNotReset
	}
	if e.over {
		return Transition{}, ErrEpisodeOver
	}

	info := Info{EpisodeID: e.episodeID}
	outcome := reward.Outcome{Action: reward.NoAction}

	if e.engine.ActivePlayer() == game.Agent && !e.engine.Done() {
		if game.ParseTurnStage(e.engine.TurnStage()).IsRoll() {
			if err := e.engine.RollDice(); err != nil {
				e.over = true
				return Transition{}, errors.Wrap(err, "roll dice")
			}
			info.AutoRolled = true
		} else {
			res, err := action.Apply(e.engine, action.ComputeLegal(e.engine), a)
			if err != nil {
				e.over = true
				return Transition{}, err
			}
			outcome.Action = kindOf(a.Type)
			outcome.Success = res.Success
			outcome.PointsMarked = res.Points
			info.InvalidMove = !res.Success
			if info.InvalidMove {
				e.logger.Debug().Str("action", a.String()).Bool("rejected", res.Rejected).Msg("invalid action")
			}
		}
	}

	if e.engine.ActivePlayer() == game.Opponent && !e.engine.Done() {
		report, err := e.automaton.Run(e.engine)
		info.OpponentActions = report.Actions()
		if err != nil {
			e.over = true
			return Transition{}, errors.Wrap(err, "opponent turn")
		}
	}

	terminated := e.engine.Done()
	outcome.Terminated = terminated
	outcome.Winner = e.engine.Winner()
	outcome.AgentHoles = e.engine.Score(game.Agent)
	outcome.OpponentHoles = e.engine.Score(game.Opponent)

	obs := observation.Encode(e.engine.StateDict())

	hash := game.Fingerprint(e.engine.StateID())
	outcome.Repeated = e.history.Count(hash) >= meta.RepetitionThreshold
	e.history.Push(hash)
	e.steps++

	truncated := !terminated && e.steps >= e.maxSteps
	outcome.Truncated = truncated

	breakdown := e.shaper.Shape(outcome)

	info.Steps = e.steps
	info.Repeated = outcome.Repeated
	info.AgentHoles = outcome.AgentHoles
	info.OpponentHoles = outcome.OpponentHoles
	info.Terminated = terminated
	info.Truncated = truncated
	info.Reward = breakdown
	switch {
	case terminated:
		info.Winner = winnerName(outcome.Winner)
	case truncated:
		info.Winner = leaderName(outcome.AgentHoles, outcome.OpponentHoles)
	}

	t := Transition{
		Observation: obs,
		Reward:      breakdown.Total,
		Terminated:  terminated,
		Truncated:   truncated,
		Info:        info,
	}
	e.metrics.AddStep(t)

	if t.Done() {
		e.over = true
		e.logger.Info().
			Str("episode", e.episodeID).
			Int("steps", e.steps).
			Str("winner", info.Winner).
			Bool("truncated", truncated).
			Msg("episode ended")
	}
	return t, nil
}

// Mask returns the legality mask of the current state.
func (e *Env) Mask() action.Mask {
	return action.ComputeMask(e.engine)
}

// LegalActions returns the vector form of every action the mask allows.
func (e *Env) LegalActions() []action.Vector {
	actions := action.ComputeLegal(e.engine).Actions()
	out := make([]action.Vector, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Vector())
	}
	return out
}

// NeedsAction reports whether the next Step applies the agent's action. It is false
// while the agent has to roll, the episode is over, or no reset happened yet.
func (e *Env) NeedsAction() bool {
	if !e.started || e.over || e.engine.Done() || e.engine.ActivePlayer() != game.Agent {
		return false
	}
	return !game.ParseTurnStage(e.engine.TurnStage()).IsRoll()
}

func (e *Env) ActionSpace() [5]action.Bound {
	return action.Space()
}

func (e *Env) ObservationSpace() observation.Space {
	return observation.DefaultSpace()
}

// Metrics returns the metrics of the current episode. They stay empty unless the
// environment was built with WithMetrics.
func (e *Env) Metrics() EpisodeMetric {
	return e.metrics.Complete()
}

func (e *Env) EpisodeID() string { return e.episodeID }

func (e *Env) Steps() int { return e.steps }

// Engine returns the wrapped engine.
func (e *Env) Engine() game.Engine { return e.engine }

// kindOf maps an action type to its reward kind. Types outside the enum can only fail
// and are shaped like a failed move.
func kindOf(t action.Type) reward.ActionKind {
	switch t {
	case action.MarkType:
		return reward.MarkAction
	case action.GoType:
		return reward.GoAction
	default:
		return reward.MoveAction
	}
}
