package game

// TurnStage is the current phase within a player's turn.
type TurnStage int

const (
	RollDice TurnStage = iota
	RollWaiting
	MarkPoints
	HoldOrGoChoice
	Move
	MarkAdvPoints
)

// NumTurnStages is the number of TurnStage values.
const NumTurnStages = 6

var stageNames = [NumTurnStages]string{
	RollDice:       "RollDice",
	RollWaiting:    "RollWaiting",
	MarkPoints:     "MarkPoints",
	HoldOrGoChoice: "HoldOrGoChoice",
	Move:           "Move",
	MarkAdvPoints:  "MarkAdvPoints",
}

// ParseTurnStage converts an engine stage name. Unknown names map to RollDice.
func ParseTurnStage(name string) TurnStage {
	switch name {
	case "RollDice":
		return RollDice
	case "RollWaiting":
		return RollWaiting
	case "MarkPoints":
		return MarkPoints
	case "HoldOrGoChoice":
		return HoldOrGoChoice
	case "Move":
		return Move
	case "MarkAdvPoints":
		return MarkAdvPoints
	default:
		return RollDice
	}
}

func (s TurnStage) String() string {
	if s < 0 || int(s) >= NumTurnStages {
		return "Unknown"
	}
	return stageNames[s]
}

// IsRoll reports whether the stage waits for a dice roll.
func (s TurnStage) IsRoll() bool {
	return s == RollDice || s == RollWaiting
}

// IsMark reports whether the stage waits for points to be marked.
func (s TurnStage) IsMark() bool {
	return s == MarkPoints || s == MarkAdvPoints
}

// AllowsMove reports whether checkers may be moved in this stage.
func (s TurnStage) AllowsMove() bool {
	return s == Move || s == HoldOrGoChoice
}
