package experiments

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"trictrac/action"
	"trictrac/observation"
)

const (
	RandomPolicyName = "random"
	FirstPolicyName  = "first"
)

// Policy picks the agent's action. It is only asked when an action is needed.
type Policy interface {
	Name() string
	Act(obs observation.Observation, legal action.Legal) action.Action
}

// RandomPolicy draws uniformly among the legal actions.
type RandomPolicy struct {
	rng *rand.Rand
}

func NewRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPolicy) Seed(seed uint64) {
	p.rng.Seed(seed)
}

func (p *RandomPolicy) Name() string { return RandomPolicyName }

func (p *RandomPolicy) Act(_ observation.Observation, legal action.Legal) action.Action {
	actions := legal.Actions()
	if len(actions) == 0 {
		return action.Go()
	}
	return actions[p.rng.Intn(len(actions))]
}

// FirstPolicy plays the first legal action.
type FirstPolicy struct{}

func (FirstPolicy) Name() string { return FirstPolicyName }

func (FirstPolicy) Act(_ observation.Observation, legal action.Legal) action.Action {
	actions := legal.Actions()
	if len(actions) == 0 {
		return action.Go()
	}
	return actions[0]
}

// PolicyByName builds a baseline policy.
func PolicyByName(name string, seed uint64) (Policy, error) {
	switch name {
	case RandomPolicyName:
		return NewRandomPolicy(seed), nil
	case FirstPolicyName:
		return FirstPolicy{}, nil
	default:
		return nil, errors.Errorf("unknown policy %q", name)
	}
}
