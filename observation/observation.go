// Package observation encodes engine state snapshots into the fixed-shape
// observation seen by the learning agent.
package observation

import (
	"fmt"
	"math"
	"strings"

	"trictrac/game"
	"trictrac/meta"
	"trictrac/utils"
)

// Size is the length of a flattened observation.
const Size = meta.MaxField + 1 + 2 + 4 + 1

// Observation is the structured observation. Board holds signed checker counts,
// positive for the agent's (white) checkers and negative for the opponent's.
type Observation struct {
	Board        [meta.MaxField]int8
	ActivePlayer int
	Dice         [2]int
	WhitePoints  int
	WhiteHoles   int
	BlackPoints  int
	BlackHoles   int
	TurnStage    int
}

var defaultDice = [2]int{1, 1}

// Encode builds an observation from a state snapshot. It never fails: missing keys
// take their defaults and out of range values are clamped.
func Encode(state game.StateDict) Observation {
	var obs Observation

	for _, f := range state.Fields(game.KeyWhitePositions) {
		if f.Position >= 1 && f.Position <= meta.MaxField {
			obs.Board[f.Position-1] = toInt8(f.Count)
		}
	}
	for _, f := range state.Fields(game.KeyBlackPositions) {
		if f.Position >= 1 && f.Position <= meta.MaxField {
			obs.Board[f.Position-1] = toInt8(-f.Count)
		}
	}

	obs.ActivePlayer = utils.Clamp(state.Int(game.KeyActivePlayer, int(game.None)), int(game.None), int(game.Opponent))
	dice := state.Pair(game.KeyDice, defaultDice)
	obs.Dice = [2]int{utils.Clamp(dice[0], 0, meta.MaxDie), utils.Clamp(dice[1], 0, meta.MaxDie)}
	obs.WhitePoints = score(state, game.KeyWhitePoints)
	obs.WhiteHoles = score(state, game.KeyWhiteHoles)
	obs.BlackPoints = score(state, game.KeyBlackPoints)
	obs.BlackHoles = score(state, game.KeyBlackHoles)
	obs.TurnStage = int(game.ParseTurnStage(state.Text(game.KeyTurnStage, game.RollDice.String())))

	return obs
}

func score(state game.StateDict, key string) int {
	return utils.Clamp(state.Int(key, 0), 0, meta.MaxScore)
}

func toInt8(n int) int8 {
	return int8(utils.Clamp(n, math.MinInt8, math.MaxInt8))
}

// Stage returns the turn stage as an enum value.
func (o Observation) Stage() game.TurnStage {
	return game.TurnStage(o.TurnStage)
}

// Flatten lays the observation out as network input: board, active player, dice,
// white points and holes, black points and holes, turn stage.
func (o Observation) Flatten() []float32 {
	out := make([]float32, 0, Size)
	for _, c := range o.Board {
		out = append(out, float32(c))
	}
	out = append(out,
		float32(o.ActivePlayer),
		float32(o.Dice[0]), float32(o.Dice[1]),
		float32(o.WhitePoints), float32(o.WhiteHoles),
		float32(o.BlackPoints), float32(o.BlackHoles),
		float32(o.TurnStage),
	)
	return out
}

// String renders the board for debugging.
func (o Observation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "player=%d stage=%s dice=%d-%d white=%d/%d black=%d/%d\n",
		o.ActivePlayer, o.Stage(), o.Dice[0], o.Dice[1],
		o.WhitePoints, o.WhiteHoles, o.BlackPoints, o.BlackHoles)
	for half := 0; half < 2; half++ {
		for i := 0; i < meta.MaxField/2; i++ {
			idx := half*meta.MaxField/2 + i
			if half == 1 {
				// top row runs right to left like a real board
				idx = meta.MaxField - 1 - i
			}
			fmt.Fprintf(&b, "%4d", o.Board[idx])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
