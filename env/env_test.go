package env

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"trictrac/action"
	"trictrac/config"
	"trictrac/enginetest"
	"trictrac/game"
	"trictrac/observation"
	"trictrac/opponent"
)

const delta = 1e-9

var errBoom = errors.New("boom")

var (
	openingMove = game.NewMoveQuad(0, 5, 0, 0)
	otherMove   = game.NewMoveQuad(3, 8, 0, 0)
)

func newEnv(t *testing.T, eng game.Engine, options ...Option) *Env {
	t.Helper()
	options = append([]Option{WithStrategy(opponent.Default{})}, options...)
	e, err := New(eng, options...)
	require.NoError(t, err)
	_, _, err = e.Reset()
	require.NoError(t, err)
	return e
}

// agentMoving is a fake waiting for the agent's move. Moves succeed and keep the
// agent in the move stage.
func agentMoving() *enginetest.Engine {
	eng := enginetest.New()
	eng.Stage = game.Move.String()
	eng.Moves = []game.MoveQuad{openingMove, otherMove}
	return eng
}

func TestReset(t *testing.T) {
	t.Run("fresh episode starts on the agent's roll", func(t *testing.T) {
		eng := enginetest.New()
		e, err := New(eng)
		require.NoError(t, err)

		obs, info, err := e.Reset()

		require.NoError(t, err)
		require.Equal(t, int(game.Agent), obs.ActivePlayer)
		require.Equal(t, int(game.RollDice), obs.TurnStage)
		require.Zero(t, obs.WhitePoints)
		require.Zero(t, obs.WhiteHoles)
		require.Zero(t, obs.BlackPoints)
		require.Zero(t, obs.BlackHoles)
		require.Equal(t, [24]int8{}, obs.Board, "Board should be empty")
		require.NotEmpty(t, info.EpisodeID)
		require.Equal(t, []string{"Reset"}, eng.Calls)
	})

	t.Run("each episode gets a new id", func(t *testing.T) {
		e := newEnv(t, enginetest.New())
		first := e.EpisodeID()

		_, info, err := e.Reset()

		require.NoError(t, err)
		require.NotEqual(t, first, info.EpisodeID)
		require.Zero(t, e.Steps())
	})

	t.Run("opponent seated first plays before the first observation", func(t *testing.T) {
		eng := enginetest.New()
		eng.OnReset = func(e *enginetest.Engine) {
			e.Active = game.Opponent
			e.Stage = game.RollDice.String()
		}
		eng.OnRollDice = func(e *enginetest.Engine) { e.Active = game.Agent }
		e, err := New(eng, WithStrategy(opponent.Default{}))
		require.NoError(t, err)

		obs, info, err := e.Reset()

		require.NoError(t, err)
		require.Equal(t, int(game.Agent), obs.ActivePlayer)
		require.Equal(t, 1, info.OpponentActions)
	})

	t.Run("seeds the engine", func(t *testing.T) {
		eng := enginetest.New()
		e := newEnv(t, eng)

		_, _, err := e.ResetWithSeed(42)

		require.NoError(t, err)
		require.Equal(t, []uint64{42}, eng.Seeded)
	})

	t.Run("engine failure is returned", func(t *testing.T) {
		eng := enginetest.New()
		eng.Err = errBoom
		e, err := New(eng)
		require.NoError(t, err)

		_, _, err = e.Reset()

		require.ErrorIs(t, err, errBoom)
	})

	t.Run("failed reset ends the running episode", func(t *testing.T) {
		eng := agentMoving()
		e := newEnv(t, eng)
		eng.Err = errBoom

		_, _, err := e.Reset()
		require.ErrorIs(t, err, errBoom)

		eng.Err = nil
		_, err = e.Step(action.Move(openingMove))
		require.ErrorIs(t, err, ErrEpisodeOver)
	})
}

func TestNew(t *testing.T) {
	t.Run("rejects a nil engine", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
	})

	t.Run("rejects a non-positive step limit", func(t *testing.T) {
		_, err := New(enginetest.New(), WithMaxSteps(0))
		require.Error(t, err)
	})

	t.Run("applies the configuration", func(t *testing.T) {
		cfg := config.Default()
		cfg.MaxSteps = 2
		cfg.OpponentStrategy = opponent.DefaultName
		e, err := New(agentMoving(), WithConfig(cfg))
		require.NoError(t, err)
		_, _, err = e.Reset()
		require.NoError(t, err)

		_, err = e.Step(action.Move(openingMove))
		require.NoError(t, err)
		tr, err := e.Step(action.Move(openingMove))

		require.NoError(t, err)
		require.True(t, tr.Truncated)
	})

	t.Run("rejects an unknown strategy", func(t *testing.T) {
		_, err := New(enginetest.New(), func(e *Env) { e.strategyName = "minimax" })
		require.Error(t, err)
	})
}

func TestStep(t *testing.T) {
	t.Run("legal move succeeds", func(t *testing.T) {
		eng := agentMoving()
		e := newEnv(t, eng)

		tr, err := e.Step(action.Decode(action.Vector{0, 0, 5, 0, 0}))

		require.NoError(t, err)
		require.Contains(t, eng.Calls, "PlayMove ((0,5),(0,0))")
		require.False(t, tr.Info.InvalidMove)
		require.InDelta(t, 0.1, tr.Info.Reward.Action, delta)
		require.InDelta(t, 0.0, tr.Info.Reward.Margin, delta)
		require.InDelta(t, 0.1, tr.Reward, delta)
		require.Equal(t, 1, tr.Info.Steps)
	})

	t.Run("move during mark stage is invalid", func(t *testing.T) {
		eng := enginetest.New()
		eng.Stage = game.MarkPoints.String()
		eng.Moves = []game.MoveQuad{openingMove}
		e := newEnv(t, eng)

		tr, err := e.Step(action.Move(openingMove))

		require.NoError(t, err)
		require.True(t, tr.Info.InvalidMove)
		require.InDelta(t, -2.0, tr.Info.Reward.Action, delta)
		require.InDelta(t, -2.0, tr.Reward, delta)
		require.Zero(t, eng.CallCount("PlayMove"), "Rejected action should not reach the engine")
	})

	t.Run("refused move is invalid", func(t *testing.T) {
		eng := agentMoving()
		eng.PlayResult = false
		e := newEnv(t, eng)

		tr, err := e.Step(action.Move(otherMove))

		require.NoError(t, err)
		require.True(t, tr.Info.InvalidMove)
		require.Equal(t, 1, eng.CallCount("PlayMove"))
		require.InDelta(t, -2.0, tr.Reward, delta)
	})

	t.Run("margin applies on invalid steps", func(t *testing.T) {
		eng := agentMoving()
		eng.Holes[game.Agent] = 3
		eng.Holes[game.Opponent] = 1
		e := newEnv(t, eng)

		tr, err := e.Step(action.Go())

		require.NoError(t, err)
		require.True(t, tr.Info.InvalidMove)
		require.InDelta(t, 1.0, tr.Info.Reward.Margin, delta)
		require.InDelta(t, -1.0, tr.Reward, delta)
	})

	t.Run("mark is rewarded per point", func(t *testing.T) {
		eng := enginetest.New()
		eng.Stage = game.MarkPoints.String()
		eng.Points = 4
		eng.OnMarkPoints = func(e *enginetest.Engine, points int) bool {
			e.Stage = game.Move.String()
			return true
		}
		e := newEnv(t, eng)

		tr, err := e.Step(action.Mark())

		require.NoError(t, err)
		require.Contains(t, eng.Calls, "MarkPoints 4")
		require.InDelta(t, 0.4, tr.Reward, delta)
	})

	t.Run("agent win terminates", func(t *testing.T) {
		eng := enginetest.New()
		eng.Stage = game.MarkPoints.String()
		eng.Points = 4
		eng.OnMarkPoints = func(e *enginetest.Engine, points int) bool {
			e.Finished = true
			e.WinnerID = game.Agent
			e.Active = game.None
			e.Holes[game.Agent] = 2
			return true
		}
		e := newEnv(t, eng)

		tr, err := e.Step(action.Mark())

		require.NoError(t, err)
		require.True(t, tr.Terminated)
		require.False(t, tr.Truncated)
		require.InDelta(t, 10.0, tr.Info.Reward.Terminal, delta)
		require.InDelta(t, 0.4+1.0+10.0, tr.Reward, delta)
		require.Equal(t, WinnerAgent, tr.Info.Winner)
	})

	t.Run("opponent win costs the loss term", func(t *testing.T) {
		eng := agentMoving()
		eng.OnPlayMove = func(e *enginetest.Engine, q game.MoveQuad) bool {
			e.Finished = true
			e.WinnerID = game.Opponent
			return true
		}
		e := newEnv(t, eng)

		tr, err := e.Step(action.Move(openingMove))

		require.NoError(t, err)
		require.True(t, tr.Terminated)
		require.InDelta(t, -5.0, tr.Info.Reward.Terminal, delta)
		require.Equal(t, WinnerOpponent, tr.Info.Winner)
	})

	t.Run("truncates at the step limit", func(t *testing.T) {
		eng := agentMoving()
		eng.Holes[game.Agent] = 7
		eng.Holes[game.Opponent] = 3
		e := newEnv(t, eng, WithMaxSteps(3))

		for i := 1; i < 3; i++ {
			tr, err := e.Step(action.Move(openingMove))
			require.NoError(t, err)
			require.False(t, tr.Truncated, "Step %d should not truncate", i)
			require.Empty(t, tr.Info.Winner)
		}
		tr, err := e.Step(action.Move(openingMove))

		require.NoError(t, err)
		require.True(t, tr.Truncated)
		require.False(t, tr.Terminated)
		require.Equal(t, 3, tr.Info.Steps)
		require.InDelta(t, 5.0, tr.Info.Reward.Truncation, delta)
		require.InDelta(t, 0.1+2.0+5.0, tr.Reward, delta)
		require.Equal(t, WinnerAgent, tr.Info.Winner)

		_, err = e.Step(action.Move(openingMove))
		require.ErrorIs(t, err, ErrEpisodeOver)
	})

	t.Run("termination wins over truncation", func(t *testing.T) {
		eng := agentMoving()
		eng.OnPlayMove = func(e *enginetest.Engine, q game.MoveQuad) bool {
			e.Finished = true
			e.WinnerID = game.Agent
			return true
		}
		e := newEnv(t, eng, WithMaxSteps(1))

		tr, err := e.Step(action.Move(openingMove))

		require.NoError(t, err)
		require.True(t, tr.Terminated)
		require.False(t, tr.Truncated)
		require.Zero(t, tr.Info.Reward.Truncation)
	})

	t.Run("repetition is penalized from the fourth occurrence", func(t *testing.T) {
		eng := agentMoving()
		e := newEnv(t, eng)

		for i := 1; i <= 3; i++ {
			tr, err := e.Step(action.Move(openingMove))
			require.NoError(t, err)
			require.False(t, tr.Info.Repeated, "Step %d should not be a repetition", i)
		}
		tr, err := e.Step(action.Move(openingMove))

		require.NoError(t, err)
		require.True(t, tr.Info.Repeated)
		require.InDelta(t, -0.2, tr.Info.Reward.Repetition, delta)
		require.InDelta(t, -0.1, tr.Reward, delta)
	})

	t.Run("repetitions leave the window", func(t *testing.T) {
		eng := agentMoving()
		e := newEnv(t, eng)
		state := 0
		eng.OnPlayMove = func(e *enginetest.Engine, q game.MoveQuad) bool {
			state++
			return true
		}

		for i := 0; i < 3; i++ {
			eng.ID = "loop"
			_, err := e.Step(action.Move(openingMove))
			require.NoError(t, err)
		}
		for i := 0; i < 8; i++ {
			eng.ID = "elsewhere"
			_, err := e.Step(action.Move(openingMove))
			require.NoError(t, err)
		}
		eng.ID = "loop"
		tr, err := e.Step(action.Move(openingMove))

		require.NoError(t, err)
		require.False(t, tr.Info.Repeated, "Only two of the last ten states are the looping one")
		require.Equal(t, 12, state)
	})

	t.Run("agent roll is made automatically", func(t *testing.T) {
		eng := enginetest.New()
		eng.OnRollDice = func(e *enginetest.Engine) { e.Stage = game.MarkPoints.String() }
		e := newEnv(t, eng)

		tr, err := e.Step(action.Move(openingMove))

		require.NoError(t, err)
		require.True(t, tr.Info.AutoRolled)
		require.False(t, tr.Info.InvalidMove)
		require.Zero(t, tr.Info.Reward.Action)
		require.Equal(t, 1, eng.CallCount("RollDice"))
		require.Equal(t, int(game.MarkPoints), tr.Observation.TurnStage)
	})

	t.Run("opponent plays after the agent hands over", func(t *testing.T) {
		eng := agentMoving()
		eng.OnPlayMove = func(e *enginetest.Engine, q game.MoveQuad) bool {
			e.Active = game.Opponent
			e.Stage = game.RollDice.String()
			return true
		}
		eng.OnRollDice = func(e *enginetest.Engine) {
			e.Active = game.Agent
		}
		e := newEnv(t, eng)

		tr, err := e.Step(action.Move(openingMove))

		require.NoError(t, err)
		require.Equal(t, 1, tr.Info.OpponentActions)
		require.Equal(t, int(game.Agent), tr.Observation.ActivePlayer)
		require.Equal(t, []string{"Reset", "AvailableMoves", "PlayMove ((0,5),(0,0))", "RollDice"}, eng.Calls)
	})

	t.Run("opponent turn at call time is played without the action", func(t *testing.T) {
		eng := enginetest.New()
		e := newEnv(t, eng)
		eng.Active = game.Opponent
		eng.OnRollDice = func(e *enginetest.Engine) { e.Active = game.Agent }

		tr, err := e.Step(action.Go())

		require.NoError(t, err)
		require.False(t, tr.Info.InvalidMove)
		require.Zero(t, tr.Info.Reward.Action)
		require.Equal(t, 1, tr.Info.OpponentActions)
		require.Zero(t, eng.CallCount("ChooseGo"))
	})

	t.Run("stalled opponent is fatal", func(t *testing.T) {
		eng := agentMoving()
		eng.OnPlayMove = func(e *enginetest.Engine, q game.MoveQuad) bool {
			e.Active = game.Opponent
			e.Stage = game.RollDice.String()
			return true
		}
		e := newEnv(t, eng, WithMaxOpponentIterations(5))

		_, err := e.Step(action.Move(openingMove))

		require.ErrorIs(t, err, opponent.ErrStalled)
		require.Equal(t, 5, eng.CallCount("RollDice"))

		_, err = e.Step(action.Move(openingMove))
		require.ErrorIs(t, err, ErrEpisodeOver)
	})

	t.Run("engine failure is returned", func(t *testing.T) {
		eng := agentMoving()
		e := newEnv(t, eng)
		eng.Err = errBoom

		_, err := e.Step(action.Move(openingMove))

		require.ErrorIs(t, err, errBoom)

		eng.Err = nil
		_, err = e.Step(action.Move(openingMove))
		require.ErrorIs(t, err, ErrEpisodeOver, "An engine failure should end the episode")
		require.Zero(t, e.Steps())
	})

	t.Run("failed roll ends the episode", func(t *testing.T) {
		eng := enginetest.New()
		e := newEnv(t, eng)
		eng.Err = errBoom

		_, err := e.Step(action.Go())
		require.ErrorIs(t, err, errBoom)

		eng.Err = nil
		_, err = e.Step(action.Go())
		require.ErrorIs(t, err, ErrEpisodeOver)
		require.False(t, e.NeedsAction())
	})

	t.Run("step before reset", func(t *testing.T) {
		e, err := New(enginetest.New())
		require.NoError(t, err)

		_, err = e.Step(action.Go())

		require.ErrorIs(t, err, ErrNotReset)
	})
}

func TestMaskAndSpaces(t *testing.T) {
	t.Run("legal actions follow the mask", func(t *testing.T) {
		eng := agentMoving()
		eng.Stage = game.HoldOrGoChoice.String()
		e := newEnv(t, eng)

		require.True(t, e.NeedsAction())
		require.Equal(t, []action.Vector{
			{0, 0, 5, 0, 0},
			{0, 3, 8, 0, 0},
			{2, 0, 0, 0, 0},
		}, e.LegalActions())
		require.True(t, e.Mask().AllowsMove(otherMove))
	})

	t.Run("nothing is legal while the agent has to roll", func(t *testing.T) {
		e := newEnv(t, enginetest.New())

		require.False(t, e.NeedsAction())
		require.Empty(t, e.LegalActions())
	})

	t.Run("spaces", func(t *testing.T) {
		e := newEnv(t, enginetest.New())

		require.Equal(t, action.Space(), e.ActionSpace())
		require.Equal(t, observation.DefaultSpace(), e.ObservationSpace())
	})
}

func TestLogging(t *testing.T) {
	// each line must carry a single component field
	checkLines := func(t *testing.T, out string, wantComponents ...string) {
		t.Helper()
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.NotEmpty(t, lines)
		for _, line := range lines {
			require.Equal(t, 1, strings.Count(line, `"component":`), "Duplicate component in %s", line)
		}
		for _, c := range wantComponents {
			require.Contains(t, out, `"component":"`+c+`"`)
		}
	}
	stall := func(t *testing.T, options ...Option) {
		eng := agentMoving()
		eng.OnPlayMove = func(e *enginetest.Engine, q game.MoveQuad) bool {
			e.Active = game.Opponent
			e.Stage = game.RollDice.String()
			return true
		}
		e := newEnv(t, eng, append(options, WithMaxOpponentIterations(2))...)
		_, err := e.Step(action.Move(openingMove))
		require.ErrorIs(t, err, opponent.ErrStalled)
	}

	t.Run("default loggers", func(t *testing.T) {
		var buf bytes.Buffer
		global := log.Logger
		log.Logger = zerolog.New(&buf)
		defer func() { log.Logger = global }()

		stall(t)

		checkLines(t, buf.String(), "env", "opponent")
	})

	t.Run("configured loggers", func(t *testing.T) {
		var buf bytes.Buffer
		global := log.Logger
		log.Logger = zerolog.New(&buf)
		defer func() { log.Logger = global }()
		cfg := config.Default()
		cfg.OpponentStrategy = opponent.DefaultName

		stall(t, WithConfig(cfg))

		checkLines(t, buf.String(), "env", "opponent")
	})

	t.Run("custom logger is shared", func(t *testing.T) {
		var buf bytes.Buffer

		stall(t, WithLogger(zerolog.New(&buf).With().Str("component", "trainer").Logger()))

		checkLines(t, buf.String(), "trainer")
		require.Contains(t, buf.String(), "opponent stalled")
	})
}

func TestMetrics(t *testing.T) {
	t.Run("collects the current episode", func(t *testing.T) {
		eng := agentMoving()
		e := newEnv(t, eng, WithMetrics())

		_, err := e.Step(action.Move(openingMove))
		require.NoError(t, err)
		_, err = e.Step(action.Mark())
		require.NoError(t, err)

		m := e.Metrics()
		require.Equal(t, e.EpisodeID(), m.EpisodeID)
		require.Equal(t, 2, m.Steps)
		require.Equal(t, 1, m.InvalidActions)
		require.InDelta(t, 0.1-2.0, m.Return, delta)
	})

	t.Run("disabled by default", func(t *testing.T) {
		e := newEnv(t, agentMoving())

		_, err := e.Step(action.Move(openingMove))
		require.NoError(t, err)

		require.Equal(t, EpisodeMetric{}, e.Metrics())
	})
}

func TestToyEpisodes(t *testing.T) {
	t.Run("episodes end with exactly one flag within the step limit", func(t *testing.T) {
		space := observation.DefaultSpace()
		for seed := uint64(1); seed <= 5; seed++ {
			const maxSteps = 60
			e, err := New(enginetest.NewToy(seed, 2), WithMaxSteps(maxSteps), WithStrategy(opponent.NewRandom(seed)))
			require.NoError(t, err)
			_, _, err = e.ResetWithSeed(seed)
			require.NoError(t, err)

			var tr Transition
			for !tr.Done() {
				require.Less(t, e.Steps(), maxSteps, "Episode ran past its limit with seed %d", seed)
				a := action.Go()
				if legal := e.LegalActions(); len(legal) > 0 {
					a = action.Decode(legal[0])
				}
				tr, err = e.Step(a)
				require.NoError(t, err)
				require.True(t, space.Contains(tr.Observation), "Observation out of space with seed %d", seed)
				require.False(t, tr.Info.InvalidMove, "First legal action was refused with seed %d", seed)
				require.False(t, tr.Terminated && tr.Truncated)
			}
			require.LessOrEqual(t, e.Steps(), maxSteps)
			require.NotEmpty(t, tr.Info.Winner)
		}
	})

	t.Run("same seed replays the same episode", func(t *testing.T) {
		play := func() []float64 {
			e, err := New(enginetest.NewToy(0, 2), WithMaxSteps(40), WithStrategy(opponent.NewRandom(0)))
			require.NoError(t, err)
			_, _, err = e.ResetWithSeed(9)
			require.NoError(t, err)
			var rewards []float64
			for {
				a := action.Go()
				if legal := e.LegalActions(); len(legal) > 0 {
					a = action.Decode(legal[len(legal)-1])
				}
				tr, err := e.Step(a)
				require.NoError(t, err)
				rewards = append(rewards, tr.Reward)
				if tr.Done() {
					return rewards
				}
			}
		}

		require.Equal(t, play(), play())
	})
}
