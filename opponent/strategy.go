package opponent

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"trictrac/game"
)

// Strategy makes the opponent's choices. ChooseMove is only called with a non-empty
// slice and must return one of its elements.
type Strategy interface {
	ChooseMove(moves []game.MoveQuad) game.MoveQuad
	// ChooseGo reports whether to continue the turn at the hold or go decision.
	// Declining holds by moving instead.
	ChooseGo() bool
}

// Seedable strategies can be made reproducible.
type Seedable interface {
	Seed(seed uint64)
}

const (
	RandomName  = "random"
	DefaultName = "default"
)

// Default plays the first legal move and always goes on.
type Default struct{}

func (Default) ChooseMove(moves []game.MoveQuad) game.MoveQuad { return moves[0] }
func (Default) ChooseGo() bool                                 { return true }

// Random draws a legal move uniformly and always goes on.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random strategy seeded with seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Seed(seed uint64) {
	r.rng.Seed(seed)
}

func (r *Random) ChooseMove(moves []game.MoveQuad) game.MoveQuad {
	return moves[r.rng.Intn(len(moves))]
}

func (r *Random) ChooseGo() bool { return true }

// ByName returns the strategy configured as name.
func ByName(name string, seed uint64) (Strategy, error) {
	switch name {
	case RandomName:
		return NewRandom(seed), nil
	case DefaultName:
		return Default{}, nil
	default:
		return nil, errors.Errorf("unknown opponent strategy %q", name)
	}
}
