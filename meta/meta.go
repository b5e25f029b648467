// meta/meta.go
package meta

// MaxField is the number of fields on a Trictrac board.
const MaxField = 24

// MaxPosition is the largest position a checker move may name (0 means unused).
const MaxPosition = MaxField

// MaxScore bounds points and holes in observations.
const MaxScore = 12

// MaxDie is the largest face of a die.
const MaxDie = 6

// DefaultMaxSteps is the agent-visible step limit of an episode.
const DefaultMaxSteps = 1000

// MaxOpponentIterations caps the opponent control loop per call.
const MaxOpponentIterations = 1000

// HistorySize is the number of recent state fingerprints inspected for repetitions.
const HistorySize = 10

// RepetitionThreshold is the occurrence count that triggers the repetition penalty.
const RepetitionThreshold = 3
