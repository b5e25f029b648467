// Package experiments evaluates baseline policies against the opponent automaton.
package experiments

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"trictrac/action"
	"trictrac/env"
	"trictrac/opponent"
)

// DefaultEpisodes is the number of episodes per evaluated policy.
const DefaultEpisodes = 30

// Summary aggregates the episodes of one policy.
type Summary struct {
	Policy         string
	Episodes       int
	MeanReturn     float64
	StdReturn      float64
	MeanLength     float64
	WinRate        float64
	TruncationRate float64
	InvalidActions int
	Metrics        []env.EpisodeMetric
}

// Evaluate plays episodes of policy in e. Episode i is reset with seed+i.
func Evaluate(e *env.Env, policy Policy, episodes int, seed uint64) (Summary, error) {
	if episodes <= 0 {
		return Summary{}, errors.Errorf("episodes must be positive, got %d", episodes)
	}
	if s, ok := policy.(opponent.Seedable); ok {
		s.Seed(seed)
	}

	log.Info().Msgf("evaluating %s over %d episodes...", policy.Name(), episodes)

	summary := Summary{Policy: policy.Name(), Episodes: episodes}
	returns := make([]float64, 0, episodes)
	lengths := make([]float64, 0, episodes)
	wins, truncations := 0, 0
	for i := 0; i < episodes; i++ {
		m, err := runEpisode(e, policy, seed+uint64(i))
		if err != nil {
			return Summary{}, errors.Wrapf(err, "episode %d", i)
		}
		summary.Metrics = append(summary.Metrics, m)
		returns = append(returns, m.Return)
		lengths = append(lengths, float64(m.Steps))
		summary.InvalidActions += m.InvalidActions
		if m.Winner == env.WinnerAgent {
			wins++
		}
		if m.Truncated {
			truncations++
		}
		log.Debug().Msgf("completed episode %d of %d with winner: %s", i+1, episodes, m.Winner)
	}

	summary.MeanReturn = stat.Mean(returns, nil)
	if episodes > 1 {
		summary.StdReturn = stat.StdDev(returns, nil)
	}
	summary.MeanLength = stat.Mean(lengths, nil)
	summary.WinRate = float64(wins) / float64(episodes)
	summary.TruncationRate = float64(truncations) / float64(episodes)

	log.Info().Msgf("completed %s: mean return %.3f (std %.3f), mean length %.1f, win rate %.2f",
		summary.Policy, summary.MeanReturn, summary.StdReturn, summary.MeanLength, summary.WinRate)
	return summary, nil
}

// Compare evaluates every policy on a fresh environment from factory.
func Compare(factory func() (*env.Env, error), policies []Policy, episodes int, seed uint64) ([]Summary, error) {
	summaries := make([]Summary, 0, len(policies))
	for pi, policy := range policies {
		log.Info().Msgf("starting policy %d of %d: %s", pi+1, len(policies), policy.Name())
		e, err := factory()
		if err != nil {
			return nil, errors.Wrap(err, "create environment")
		}
		summary, err := Evaluate(e, policy, episodes, seed)
		if err != nil {
			return nil, errors.Wrap(err, policy.Name())
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func runEpisode(e *env.Env, policy Policy, seed uint64) (env.EpisodeMetric, error) {
	obs, info, err := e.ResetWithSeed(seed)
	if err != nil {
		return env.EpisodeMetric{}, err
	}
	collector := env.NewCollector()
	collector.Start(info.EpisodeID)
	for {
		a := action.Go()
		if e.NeedsAction() {
			a = policy.Act(obs, action.ComputeLegal(e.Engine()))
		}
		tr, err := e.Step(a)
		if err != nil {
			return env.EpisodeMetric{}, err
		}
		collector.AddStep(tr)
		obs = tr.Observation
		if tr.Done() {
			return collector.Complete(), nil
		}
	}
}
