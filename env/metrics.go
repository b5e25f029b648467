package env

import (
	"time"
)

// EpisodeMetric summarizes one episode.
type EpisodeMetric struct {
	EpisodeID       string
	Return          float64
	Steps           int
	InvalidActions  int
	AutoRolls       int
	OpponentActions int
	Repetitions     int
	Terminated      bool
	Truncated       bool
	Winner          string
	StartTime       time.Time
	Duration        time.Duration
}

type Collector interface {
	Start(episodeID string)
	AddStep(t Transition)
	Complete() EpisodeMetric
}

type collector struct {
	metric EpisodeMetric
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start(episodeID string) {
	c.metric = EpisodeMetric{EpisodeID: episodeID, StartTime: time.Now()}
}

func (c *collector) AddStep(t Transition) {
	m := &c.metric
	m.Return += t.Reward
	m.Steps = t.Info.Steps
	m.OpponentActions += t.Info.OpponentActions
	if t.Info.InvalidMove {
		m.InvalidActions++
	}
	if t.Info.AutoRolled {
		m.AutoRolls++
	}
	if t.Info.Repeated {
		m.Repetitions++
	}
	m.Terminated = t.Terminated
	m.Truncated = t.Truncated
	m.Winner = t.Info.Winner
}

func (c *collector) Complete() EpisodeMetric {
	m := c.metric
	m.Duration = time.Since(m.StartTime)
	return m
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (c *dummyCollector) Start(episodeID string) {}
func (c *dummyCollector) AddStep(t Transition)   {}
func (c *dummyCollector) Complete() EpisodeMetric {
	return EpisodeMetric{}
}
