package game

import "github.com/cespare/xxhash/v2"

// StateHash fingerprints an engine state. Equal for and only for equivalent states,
// as long as the engine's state ids are.
type StateHash uint64

// Fingerprint hashes the opaque state id reported by the engine.
func Fingerprint(stateID string) StateHash {
	return StateHash(xxhash.Sum64String(stateID))
}

// TurnQuery exposes whose turn it is, where in the turn protocol the game is, and
// whether the game is over.
type TurnQuery interface {
	ActivePlayer() PlayerID
	// TurnStage returns the engine's stage name, see ParseTurnStage.
	TurnStage() string
	Done() bool
	Winner() PlayerID
}

// MoveExecutor enumerates legal moves and performs the state-mutating actions of a turn.
// The boolean results report whether the engine accepted the action; errors are reserved
// for collaborator failures.
type MoveExecutor interface {
	AvailableMoves() []MoveQuad
	PlayMove(MoveQuad) (bool, error)
	RollDice() error
	CalculatePoints() int
	MarkPoints(points int) (bool, error)
	ChooseGo() (bool, error)
}

// ScoreProvider reports holes per player.
type ScoreProvider interface {
	Score(PlayerID) int
}

// Engine is the game engine facade consumed by the adapter. Implementations are not
// safe for concurrent use; each environment owns its engine.
type Engine interface {
	TurnQuery
	MoveExecutor
	ScoreProvider

	// Reset reinitializes the game to the starting position.
	Reset() error
	// StateDict returns a snapshot of the current state.
	StateDict() StateDict
	// StateID returns an opaque identifier of the current state.
	StateID() string
}

// Seeder is implemented by engines whose dice can be made reproducible.
type Seeder interface {
	Seed(seed uint64)
}
