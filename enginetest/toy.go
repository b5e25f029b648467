package enginetest

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"

	"trictrac/game"
	"trictrac/meta"
)

const (
	toyCheckers      = 15
	toyPointsPerHole = 12
)

// Toy is a small deterministic race game that walks through the same turn protocol as
// Trictrac: roll, mark, optionally hold or go, move. White (the agent) races up from
// field 1, black races down from field 24. Marking earns 2 points, 4 on doubles; twelve
// points make a hole. It is not Trictrac and only exists to run whole episodes in tests.
//
// Like the real engine it rolls automatically for the next player once a turn ends,
// and a player without legal moves passes.
type Toy struct {
	seed         uint64
	rng          *rand.Rand
	holesToWin   int
	white, black [meta.MaxField + 1]int
	active       game.PlayerID
	stage        game.TurnStage
	dice         [2]int
	points       [3]int
	holes        [3]int
	winner       game.PlayerID
}

// NewToy returns a reset toy game. holesToWin below 1 defaults to 3.
func NewToy(seed uint64, holesToWin int) *Toy {
	if holesToWin < 1 {
		holesToWin = 3
	}
	t := &Toy{seed: seed, holesToWin: holesToWin}
	t.Reset()
	return t
}

func (t *Toy) Seed(seed uint64) {
	t.seed = seed
	t.rng = rand.New(rand.NewSource(seed))
}

func (t *Toy) Reset() error {
	t.rng = rand.New(rand.NewSource(t.seed))
	t.white = [meta.MaxField + 1]int{}
	t.black = [meta.MaxField + 1]int{}
	t.white[1] = toyCheckers
	t.black[meta.MaxField] = toyCheckers
	t.active = game.Agent
	t.stage = game.RollDice
	t.dice = [2]int{}
	t.points = [3]int{}
	t.holes = [3]int{}
	t.winner = game.None
	return nil
}

func (t *Toy) ActivePlayer() game.PlayerID { return t.active }
func (t *Toy) TurnStage() string           { return t.stage.String() }
func (t *Toy) Done() bool                  { return t.winner != game.None }
func (t *Toy) Winner() game.PlayerID       { return t.winner }

func (t *Toy) Score(p game.PlayerID) int {
	if p != game.Agent && p != game.Opponent {
		return -1
	}
	return t.holes[p]
}

func (t *Toy) RollDice() error {
	t.roll()
	return nil
}

// roll throws both dice when the stage waits for them. The toy's dice cannot fail.
func (t *Toy) roll() {
	if t.Done() || !t.stage.IsRoll() {
		return
	}
	t.dice = [2]int{1 + t.rng.Intn(6), 1 + t.rng.Intn(6)}
	t.stage = game.MarkPoints
}

func (t *Toy) CalculatePoints() int {
	if t.Done() || !t.stage.IsMark() {
		return 0
	}
	if t.dice[0] == t.dice[1] {
		return 4
	}
	return 2
}

func (t *Toy) MarkPoints(points int) (bool, error) {
	if t.Done() || !t.stage.IsMark() || points != t.CalculatePoints() {
		return false, nil
	}
	t.points[t.active] += points
	wonHole := false
	for t.points[t.active] >= toyPointsPerHole {
		t.points[t.active] -= toyPointsPerHole
		t.holes[t.active]++
		wonHole = true
	}
	if t.holes[t.active] >= t.holesToWin {
		t.winner = t.active
		t.active = game.None
		return true, nil
	}
	if wonHole {
		t.stage = game.HoldOrGoChoice
		return true, nil
	}
	t.enterMove()
	return true, nil
}

func (t *Toy) ChooseGo() (bool, error) {
	if t.Done() || t.stage != game.HoldOrGoChoice {
		return false, nil
	}
	// going on keeps the turn and starts it over with a fresh roll
	t.stage = game.RollDice
	t.roll()
	return true, nil
}

func (t *Toy) AvailableMoves() []game.MoveQuad {
	if t.Done() || !t.stage.AllowsMove() {
		return nil
	}
	own, other, dir := t.sides()
	var moves []game.MoveQuad
	seen := map[game.MoveQuad]bool{}
	for from1 := 1; from1 <= meta.MaxField; from1++ {
		to1 := from1 + dir*t.dice[0]
		if own[from1] == 0 || !open(other, to1) {
			continue
		}
		after := *own
		after[from1]--
		after[to1]++
		for from2 := 1; from2 <= meta.MaxField; from2++ {
			to2 := from2 + dir*t.dice[1]
			if after[from2] == 0 || !open(other, to2) {
				continue
			}
			q := game.NewMoveQuad(from1, to1, from2, to2)
			if !seen[q] {
				seen[q] = true
				moves = append(moves, q)
			}
		}
	}
	return moves
}

func (t *Toy) PlayMove(q game.MoveQuad) (bool, error) {
	if t.Done() || !t.stage.AllowsMove() {
		return false, nil
	}
	legal := false
	for _, m := range t.AvailableMoves() {
		if m == q {
			legal = true
			break
		}
	}
	if !legal {
		return false, nil
	}
	own, _, _ := t.sides()
	for _, m := range []game.CheckerMove{q.First, q.Second} {
		own[m.From]--
		own[m.To]++
	}
	t.endTurn()
	return true, nil
}

func (t *Toy) StateDict() game.StateDict {
	return game.StateDict{
		game.KeyWhitePositions: fields(t.white),
		game.KeyBlackPositions: fields(t.black),
		game.KeyActivePlayer:   int(t.active),
		game.KeyDice:           t.dice,
		game.KeyWhitePoints:    t.points[game.Agent],
		game.KeyWhiteHoles:     t.holes[game.Agent],
		game.KeyBlackPoints:    t.points[game.Opponent],
		game.KeyBlackHoles:     t.holes[game.Opponent],
		game.KeyTurnStage:      t.stage.String(),
		game.KeyStateID:        t.StateID(),
	}
}

func (t *Toy) StateID() string {
	var b strings.Builder
	for i := 1; i <= meta.MaxField; i++ {
		fmt.Fprintf(&b, "%d,", t.white[i]-t.black[i])
	}
	fmt.Fprintf(&b, "|%d|%s|%v|%v|%v", t.active, t.stage, t.dice, t.points, t.holes)
	return b.String()
}

func (t *Toy) sides() (own, other *[meta.MaxField + 1]int, dir int) {
	if t.active == game.Opponent {
		return &t.black, &t.white, -1
	}
	return &t.white, &t.black, 1
}

func (t *Toy) enterMove() {
	t.stage = game.Move
	if len(t.AvailableMoves()) == 0 {
		t.endTurn()
	}
}

func (t *Toy) endTurn() {
	t.active = t.active.Other()
	t.stage = game.RollDice
	t.roll()
}

func open(other *[meta.MaxField + 1]int, to int) bool {
	return to >= 1 && to <= meta.MaxField && other[to] == 0
}

func fields(board [meta.MaxField + 1]int) []game.Field {
	var out []game.Field
	for i := 1; i <= meta.MaxField; i++ {
		if board[i] > 0 {
			out = append(out, game.Field{Position: i, Count: board[i]})
		}
	}
	return out
}
