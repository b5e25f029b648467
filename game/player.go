package game

// PlayerID identifies a seat. The agent always plays white.
type PlayerID int

const (
	None PlayerID = iota
	Agent
	Opponent
)

func (p PlayerID) String() string {
	switch p {
	case Agent:
		return "agent"
	case Opponent:
		return "opponent"
	default:
		return "none"
	}
}

// Other returns the opposing seat, or None for None.
func (p PlayerID) Other() PlayerID {
	switch p {
	case Agent:
		return Opponent
	case Opponent:
		return Agent
	default:
		return None
	}
}
