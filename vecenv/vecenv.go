// Package vecenv steps several independent environments in lockstep and batches their
// observations into tensors.
package vecenv

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"trictrac/action"
	"trictrac/env"
	"trictrac/observation"
)

// StepResult is the batched outcome of one VecEnv step. Members whose episode ended were
// reset: Observations holds their first observation of the next episode and
// FinalObservations[i] the last one of the finished episode.
type StepResult struct {
	Observations      *tensor.Dense
	Rewards           []float64
	Terminated        []bool
	Truncated         []bool
	Infos             []env.Info
	FinalObservations []*observation.Observation
}

// VecEnv runs its members sequentially and shares nothing between them.
type VecEnv struct {
	envs []*env.Env
	obs  []observation.Observation
}

func New(envs ...*env.Env) (*VecEnv, error) {
	if len(envs) == 0 {
		return nil, errors.New("no environments")
	}
	return &VecEnv{envs: envs, obs: make([]observation.Observation, len(envs))}, nil
}

// Make builds n environments with factory.
func Make(n int, factory func(i int) (*env.Env, error)) (*VecEnv, error) {
	envs := make([]*env.Env, 0, n)
	for i := 0; i < n; i++ {
		e, err := factory(i)
		if err != nil {
			return nil, errors.Wrapf(err, "environment %d", i)
		}
		envs = append(envs, e)
	}
	return New(envs...)
}

func (v *VecEnv) Len() int { return len(v.envs) }

// Env returns the i-th member.
func (v *VecEnv) Env(i int) *env.Env { return v.envs[i] }

// Reset resets every member, seeding member i with seed+i.
func (v *VecEnv) Reset(seed uint64) (*tensor.Dense, []env.Info, error) {
	infos := make([]env.Info, len(v.envs))
	for i, e := range v.envs {
		obs, info, err := e.ResetWithSeed(seed + uint64(i))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reset environment %d", i)
		}
		v.obs[i] = obs
		infos[i] = info
	}
	return Batch(v.obs), infos, nil
}

// Step applies actions[i] to member i and auto-resets finished members.
func (v *VecEnv) Step(actions []action.Action) (StepResult, error) {
	if len(actions) != len(v.envs) {
		return StepResult{}, errors.Errorf("got %d actions for %d environments", len(actions), len(v.envs))
	}
	n := len(v.envs)
	res := StepResult{
		Rewards:           make([]float64, n),
		Terminated:        make([]bool, n),
		Truncated:         make([]bool, n),
		Infos:             make([]env.Info, n),
		FinalObservations: make([]*observation.Observation, n),
	}
	for i, e := range v.envs {
		tr, err := e.Step(actions[i])
		if err != nil {
			return StepResult{}, errors.Wrapf(err, "step environment %d", i)
		}
		res.Rewards[i] = tr.Reward
		res.Terminated[i] = tr.Terminated
		res.Truncated[i] = tr.Truncated
		res.Infos[i] = tr.Info
		v.obs[i] = tr.Observation

		if tr.Done() {
			final := tr.Observation
			res.FinalObservations[i] = &final
			obs, _, err := e.Reset()
			if err != nil {
				return StepResult{}, errors.Wrapf(err, "reset environment %d", i)
			}
			v.obs[i] = obs
		}
	}
	res.Observations = Batch(v.obs)
	return res, nil
}

// Masks returns the current action mask of every member.
func (v *VecEnv) Masks() []action.Mask {
	masks := make([]action.Mask, len(v.envs))
	for i, e := range v.envs {
		masks[i] = e.Mask()
	}
	return masks
}

// Observations returns the latest observation of every member.
func (v *VecEnv) Observations() []observation.Observation {
	out := make([]observation.Observation, len(v.obs))
	copy(out, v.obs)
	return out
}

// Batch stacks flattened observations into a (len(obs), observation.Size) tensor.
func Batch(obs []observation.Observation) *tensor.Dense {
	backing := make([]float32, 0, len(obs)*observation.Size)
	for _, o := range obs {
		backing = append(backing, o.Flatten()...)
	}
	return tensor.New(
		tensor.WithShape(len(obs), observation.Size),
		tensor.WithBacking(backing),
	)
}
