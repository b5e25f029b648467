package env

import (
	"trictrac/game"
	"trictrac/observation"
	"trictrac/reward"
)

// Winner names reported in Info.
const (
	WinnerAgent    = "agent"
	WinnerOpponent = "opponent"
	WinnerDraw     = "draw"
)

// Info carries diagnostics of a reset or step.
type Info struct {
	EpisodeID string
	Steps     int
	// InvalidMove is set when the agent's action was rejected or refused.
	InvalidMove bool
	// AutoRolled is set when the adapter rolled the dice on the agent's behalf
	// instead of applying its action.
	AutoRolled      bool
	Repeated        bool
	OpponentActions int
	AgentHoles      int
	OpponentHoles   int
	// Winner is set once the episode ends: by the engine on termination, by the hole
	// count on truncation.
	Winner     string
	Terminated bool
	Truncated  bool
	Reward     reward.Breakdown
}

// Transition is the MDP tuple returned by Step.
type Transition struct {
	Observation observation.Observation
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        Info
}

// Done reports whether the episode ended with this transition.
func (t Transition) Done() bool {
	return t.Terminated || t.Truncated
}

func winnerName(p game.PlayerID) string {
	switch p {
	case game.Agent:
		return WinnerAgent
	case game.Opponent:
		return WinnerOpponent
	default:
		return WinnerDraw
	}
}

func leaderName(agentHoles, opponentHoles int) string {
	switch {
	case agentHoles > opponentHoles:
		return WinnerAgent
	case agentHoles < opponentHoles:
		return WinnerOpponent
	default:
		return WinnerDraw
	}
}
